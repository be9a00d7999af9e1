package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics содержит метрики аутентификации и OTP.
type AuthMetrics struct {
	signups      prometheus.Counter
	otpIssued    prometheus.Counter
	otpValidated *prometheus.CounterVec
}

// NewAuthMetrics создаёт новый экземпляр метрик аутентификации.
func NewAuthMetrics() *AuthMetrics {
	return newAuthMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newAuthMetricsWithRegisterer(registerer prometheus.Registerer) *AuthMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &AuthMetrics{
		signups: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_signups_total",
			Help: "Total number of registered customers",
		}),
		otpIssued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_otp_issued_total",
			Help: "Total number of issued one-time codes",
		}),
		otpValidated: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fishgalaxy_otp_validations_total",
			Help: "Total number of one-time code validations grouped by result",
		}, []string{"result"}),
	}
}

// RecordSignup увеличивает счётчик регистраций.
func (m *AuthMetrics) RecordSignup() {
	m.signups.Inc()
}

// RecordOTPIssued увеличивает счётчик выданных кодов.
func (m *AuthMetrics) RecordOTPIssued() {
	m.otpIssued.Inc()
}

// RecordOTPValidation увеличивает счётчик проверок кода с меткой результата.
func (m *AuthMetrics) RecordOTPValidation(result string) {
	m.otpValidated.WithLabelValues(result).Inc()
}
