package service

import (
	"os"
	"testing"

	"tasleem/internal/util"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}
