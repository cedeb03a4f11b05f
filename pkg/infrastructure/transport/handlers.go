package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"posservice/pkg/domain/model"
	"posservice/pkg/domain/service"
)

type handlers struct {
	checkout  service.CheckoutService
	products  service.ProductService
	customers service.CustomerService
	webhooks  service.WebhookService
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Sales ---

type saleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type paymentRequest struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

type createSaleRequest struct {
	CustomerID    *string           `json:"customer_id,omitempty"`
	OperatorID    string            `json:"operator_id"`
	Items         []saleLineRequest `json:"items"`
	Payments      []paymentRequest  `json:"payments"`
	DiscountCents int64             `json:"discount_cents"`
}

func (h *handlers) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid operator_id")
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		parsed, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		customerID = &parsed
	}

	cart := make([]model.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		cart = append(cart, model.CartLine{ProductID: productID, Quantity: item.Quantity})
	}

	payments := make([]model.Payment, 0, len(req.Payments))
	for _, p := range req.Payments {
		payments = append(payments, model.Payment{Method: model.PaymentMethod(p.Method), Amount: p.Amount})
	}

	sale, err := h.checkout.ProcessSale(r.Context(), customerID, cart, payments, req.DiscountCents, operatorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saleToResponse(sale))
}

func (h *handlers) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.checkout.GetSale(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saleToResponse(sale))
}

func (h *handlers) listSales(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	sales, total, err := h.checkout.ListSales(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, saleToResponse(sale))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sales":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// --- Products ---

type productRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	InitialStock int    `json:"initial_stock"`
}

func (h *handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req.Name, req.Description, req.PriceCents, req.InitialStock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, productToResponse(product))
}

func (h *handlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.products.UpdateProductDetails(r.Context(), id, req.Name, req.Description); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

func (h *handlers) changeProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		PriceCents int64 `json:"price_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.products.ChangeProductPrice(r.Context(), id, req.PriceCents); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "price updated"})
}

func (h *handlers) receiveStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.products.ReceiveStock(r.Context(), id, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "stock received"})
}

func (h *handlers) archiveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.products.ArchiveProduct(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product archived"})
}

func (h *handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAvailableProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(products))
}

func (h *handlers) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	products, err := h.products.SearchProducts(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(products))
}

// --- Customers ---

type customerRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func (h *handlers) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customer, err := h.customers.RegisterCustomer(r.Context(), req.Phone, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerToResponse(customer))
}

func (h *handlers) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.customers.UpdateCustomerProfile(r.Context(), id, req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer updated"})
}

func (h *handlers) findCustomerByPhone(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	customer, err := h.customers.FindByPhone(r.Context(), phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(customer))
}

func (h *handlers) deactivateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.customers.DeactivateCustomer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer deactivated"})
}

func (h *handlers) adjustLoyaltyBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		DeltaPoints int64 `json:"delta_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customer, err := h.customers.AdjustLoyaltyBalance(r.Context(), id, req.DeltaPoints)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(customer))
}

// --- Webhooks ---

type webhookRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *handlers) registerWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	webhook, err := h.webhooks.RegisterWebhook(r.Context(), req.Name, req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, webhookToResponse(webhook))
}

func (h *handlers) listWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.webhooks.ListWebhooks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]webhookResponse, 0, len(webhooks))
	for _, webhook := range webhooks {
		items = append(items, webhookToResponse(webhook))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"webhooks": items})
}

func (h *handlers) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.webhooks.DeleteWebhook(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "webhook deleted"})
}

// --- Helpers ---

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["ID"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError keeps business-rule violations distinct from transient
// conflicts so the caller knows whether a retry makes sense.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrCustomerNotFound),
		errors.Is(err, model.ErrSaleNotFound),
		errors.Is(err, model.ErrWebhookNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrStockConflict),
		errors.Is(err, model.ErrOptimisticLock),
		errors.Is(err, model.ErrPhoneTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrOutOfStock),
		errors.Is(err, model.ErrPaymentMismatch),
		errors.Is(err, model.ErrInsufficientPoints),
		errors.Is(err, model.ErrProductUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrInvalidDiscount),
		errors.Is(err, model.ErrNoPaymentProvided),
		errors.Is(err, model.ErrRedemptionRequiresCustomer),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrUnknownPaymentMethod),
		errors.Is(err, service.ErrInvalidStockQuantity),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrPhoneRequired),
		errors.Is(err, service.ErrCustomerChanged),
		errors.Is(err, service.ErrInvalidWebhookURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- Response mapping ---

type saleItemResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

type paymentResponse struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

type saleResponse struct {
	ID             string             `json:"id"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	OperatorID     string             `json:"operator_id"`
	Items          []saleItemResponse `json:"items"`
	Payments       []paymentResponse  `json:"payments"`
	SubtotalCents  int64              `json:"subtotal_cents"`
	DiscountCents  int64              `json:"discount_cents"`
	TaxCents       int64              `json:"tax_cents"`
	TotalCents     int64              `json:"total_cents"`
	PointsEarned   int64              `json:"points_earned"`
	PointsRedeemed int64              `json:"points_redeemed"`
	CreatedAt      string             `json:"created_at"`
}

func saleToResponse(sale *model.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, saleItemResponse{
			ProductID:      item.ProductID.String(),
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			SubtotalCents:  item.SubtotalCents,
		})
	}
	payments := make([]paymentResponse, 0, len(sale.Payments))
	for _, payment := range sale.Payments {
		payments = append(payments, paymentResponse{Method: string(payment.Method), Amount: payment.Amount})
	}

	var customerID *string
	if sale.CustomerID != nil {
		s := sale.CustomerID.String()
		customerID = &s
	}

	return saleResponse{
		ID:             sale.ID.String(),
		CustomerID:     customerID,
		OperatorID:     sale.OperatorID.String(),
		Items:          items,
		Payments:       payments,
		SubtotalCents:  sale.SubtotalCents,
		DiscountCents:  sale.DiscountCents,
		TaxCents:       sale.TaxCents,
		TotalCents:     sale.TotalCents,
		PointsEarned:   sale.PointsEarned,
		PointsRedeemed: sale.PointsRedeemed,
		CreatedAt:      sale.CreatedAt.Format(time.RFC3339Nano),
	}
}

type productResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	StockQuantity int    `json:"stock_quantity"`
	Active        bool   `json:"active"`
}

func productToResponse(product *model.Product) productResponse {
	return productResponse{
		ID:            product.ID.String(),
		Name:          product.Name,
		Description:   product.Description,
		PriceCents:    product.PriceCents,
		StockQuantity: product.StockQuantity,
		Active:        product.Status == model.Available,
	}
}

func productsToResponse(products []*model.Product) map[string]interface{} {
	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, productToResponse(product))
	}
	return map[string]interface{}{"products": items}
}

type customerResponse struct {
	ID            string `json:"id"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
	LoyaltyPoints int64  `json:"loyalty_points"`
	Active        bool   `json:"active"`
}

func customerToResponse(customer *model.Customer) customerResponse {
	return customerResponse{
		ID:            customer.ID.String(),
		Phone:         customer.Phone,
		Name:          customer.Name,
		LoyaltyPoints: customer.LoyaltyPoints,
		Active:        customer.Status == model.Active,
	}
}

type webhookResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func webhookToResponse(webhook *model.Webhook) webhookResponse {
	return webhookResponse{
		ID:        webhook.ID.String(),
		Name:      webhook.Name,
		URL:       webhook.URL,
		Active:    webhook.Active,
		CreatedAt: webhook.CreatedAt.Format(time.RFC3339Nano),
	}
}
