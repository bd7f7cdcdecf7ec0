package api

import (
	"net/http"
	"strings"

	"tasleem/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.svc.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	product, err := h.svc.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.svc.Catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.svc.Catalog.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم الحذف"})
}

func (h *Handler) listPromoCodes(c *gin.Context) {
	codes, err := h.svc.Promos.ListPromoCodes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *Handler) createPromoCode(c *gin.Context) {
	var req service.PromoRequest
	if !bindJSON(c, &req) {
		return
	}

	promo, err := h.svc.Promos.CreatePromoCode(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

func (h *Handler) deletePromoCode(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.Promos.DeletePromoCode(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم الحذف"})
}

func (h *Handler) verifyPromoCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if !bindJSON(c, &req) {
		return
	}

	promo, err := h.svc.Promos.VerifyPromoCode(c.Request.Context(), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

func (h *Handler) uploadImage(c *gin.Context) {
	var req struct {
		Image string `json:"image"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Images.Upload(c.Request.Context(), req.Image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) deleteImage(c *gin.Context) {
	publicID := strings.TrimPrefix(c.Param("publicId"), "/")

	if err := h.svc.Images.Delete(c.Request.Context(), publicID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم الحذف"})
}
