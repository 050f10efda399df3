package httpapi

import (
	"net/http"

	"github.com/chemsource/sourcing/v1/buylist"
	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	sourcing *sourcing.Service
	buyLists *buylist.Service
}

func (h *handlers) health(c *gin.Context) {
	success(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) ensureProfile(c *gin.Context) {
	var req ensureProfileRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	profile, outcome, err := h.sourcing.EnsureProfile(c.Request.Context(), req.triple(), req.ProfileDefaults)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if outcome == sourcing.Created {
		status = http.StatusCreated
	}
	success(c, status, gin.H{"profile": profile, "outcome": outcome.String()})
}

func (h *handlers) listProfiles(c *gin.Context) {
	var q struct {
		Email string `form:"email" binding:"trimmed"`
	}
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	profiles, err := h.sourcing.ListProfiles(c.Request.Context(), q.Email)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, profiles)
}

func (h *handlers) addProduct(c *gin.Context) {
	var req addProductRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	product, err := h.sourcing.AddProduct(c.Request.Context(), req.triple(), req.fields())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, product)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	product, err := h.sourcing.UpdateProduct(c.Request.Context(), req.triple(), sourcing.ProductID(c.Param("productId")), req.Patch)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, product)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	var req identity
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	productID := sourcing.ProductID(c.Param("productId"))
	if err := h.sourcing.DeleteProduct(c.Request.Context(), req.triple(), productID); err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"productId": productID, "deleted": true})
}

func (h *handlers) getProduct(c *gin.Context) {
	var q lookupQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	product, err := h.sourcing.GetProduct(c.Request.Context(), q.triple(), sourcing.ProductID(c.Param("productId")))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, product)
}

func (h *handlers) listProducts(c *gin.Context) {
	var q lookupQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	products, err := h.sourcing.ListProducts(c.Request.Context(), q.triple())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, products)
}

func (h *handlers) getBuyList(c *gin.Context) {
	var q identity
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	rec, err := h.buyLists.Get(c.Request.Context(), q.triple())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, rec)
}

func (h *handlers) addBuyItem(c *gin.Context) {
	var req buyItemRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	rec, err := h.buyLists.AddItem(c.Request.Context(), req.triple(), req.ProductName)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, rec)
}

func (h *handlers) removeBuyItem(c *gin.Context) {
	var req buyItemRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	rec, err := h.buyLists.RemoveItem(c.Request.Context(), req.triple(), req.ProductName)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, rec)
}
