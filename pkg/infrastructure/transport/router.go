package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"posservice/pkg/domain/service"
)

func Router(checkout service.CheckoutService, products service.ProductService, customers service.CustomerService, webhooks service.WebhookService) http.Handler {
	h := &handlers{checkout: checkout, products: products, customers: customers, webhooks: webhooks}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/sales", h.createSale).Methods(http.MethodPost)
	s.HandleFunc("/sales", h.listSales).Methods(http.MethodGet)
	s.HandleFunc("/sales/{ID}", h.getSale).Methods(http.MethodGet)

	s.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/search", h.searchProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/{ID}", h.updateProduct).Methods(http.MethodPut)
	s.HandleFunc("/products/{ID}", h.archiveProduct).Methods(http.MethodDelete)
	s.HandleFunc("/products/{ID}/price", h.changeProductPrice).Methods(http.MethodPut)
	s.HandleFunc("/products/{ID}/stock", h.receiveStock).Methods(http.MethodPost)

	s.HandleFunc("/customers", h.registerCustomer).Methods(http.MethodPost)
	s.HandleFunc("/customers/search", h.findCustomerByPhone).Methods(http.MethodGet)
	s.HandleFunc("/customers/{ID}", h.updateCustomer).Methods(http.MethodPut)
	s.HandleFunc("/customers/{ID}", h.deactivateCustomer).Methods(http.MethodDelete)
	s.HandleFunc("/customers/{ID}/loyalty", h.adjustLoyaltyBalance).Methods(http.MethodPut)

	s.HandleFunc("/webhooks", h.registerWebhook).Methods(http.MethodPost)
	s.HandleFunc("/webhooks", h.listWebhooks).Methods(http.MethodGet)
	s.HandleFunc("/webhooks/{ID}", h.deleteWebhook).Methods(http.MethodDelete)

	return logMiddleware(r)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
