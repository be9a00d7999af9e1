package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated  prometheus.Counter
	ordersCleared  prometheus.Counter
	statusChanges  *prometheus.CounterVec
	invoicesIssued prometheus.Counter

	// Гистограммы времени выполнения
	createDuration prometheus.Histogram

	// Счётчик событий outbox
	outboxEvents prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_orders_created_total",
			Help: "Total number of orders placed",
		}),
		ordersCleared: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_orders_cleared_total",
			Help: "Total number of order store resets",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_order_status_changes_total",
			Help: "Total number of order status transitions grouped by target status",
		}, []string{"status"}),
		invoicesIssued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_invoices_issued_total",
			Help: "Total number of rendered order invoices",
		}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fishgalaxy_order_create_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_order_outbox_events_total",
			Help: "Total number of order events enqueued into transactional outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик размещённых заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrdersCleared увеличивает счётчик сбросов хранилища заказов.
func (m *OrderMetrics) RecordOrdersCleared() {
	m.ordersCleared.Inc()
}

// RecordStatusChange увеличивает счётчик переходов в указанный статус.
func (m *OrderMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordInvoiceIssued увеличивает счётчик выпущенных счетов.
func (m *OrderMetrics) RecordInvoiceIssued() {
	m.invoicesIssued.Inc()
}

// RecordCreateDuration записывает время размещения заказа.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик поставленных в outbox событий.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
