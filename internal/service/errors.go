package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service errors for the transport layer
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindInsufficientFunds
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// User-facing messages
const (
	MsgUnauthorized        = "Unauthorized"
	MsgForbidden           = "غير مصرح"
	MsgBadCredentials      = "رقم الهاتف أو كلمة المرور غير صحيحة"
	MsgPhoneTaken          = "رقم الهاتف مسجل مسبقاً"
	MsgRegistrationInvalid = "رقم الهاتف وكلمة المرور واسم المتجر مطلوبة"
	MsgPasswordTooShort    = "كلمة المرور يجب أن تكون 6 أحرف على الأقل"
	MsgUserNotFound        = "المستخدم غير موجود"
	MsgEmptyOrder          = "يجب إضافة منتج واحد على الأقل"
	MsgCustomerRequired    = "بيانات الزبون مطلوبة"
	MsgNegativeProfit      = "سعر البيع بعد خصم كود الخصم أقل من سعر الجملة"
	MsgTooManyItems        = "عدد المنتجات في الطلب أكبر من المسموح"
	MsgProductNotFound     = "المنتج غير موجود"
	MsgProductInvalid      = "بيانات المنتج غير صحيحة"
	MsgOrderNotFound       = "الطلب غير موجود"
	MsgInvalidStatus       = "حالة غير صالحة"
	MsgStatusConflict      = "تم تغيير الحالة من قبل طلب آخر، حاول مرة أخرى"
	MsgInvalidAmount       = "مبلغ غير صحيح"
	MsgInsufficientFunds   = "رصيد غير كافٍ"
	MsgWithdrawalNotFound  = "طلب السحب غير موجود"
	MsgPromoInvalid        = "كود الخصم غير صالح"
	MsgPromoTaken          = "كود الخصم مسجل مسبقاً"
	MsgPromoBadPercent     = "نسبة الخصم يجب أن تكون بين 1 و 100"
	MsgPromoNotFound       = "كود الخصم غير موجود"
	MsgImageRequired       = "الصورة مطلوبة"
	MsgImageUploadFailed   = "فشل رفع الصورة"
	MsgInternal            = "خطأ في الخادم"
)

// Error is a classified service error. Message is safe to show to clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Unexpected wraps an infrastructure failure
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: MsgInternal, Err: err}
}

// KindOf returns the kind of err, KindUnexpected for unclassified errors
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnexpected
}
