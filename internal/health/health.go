// Package health агрегирует проверки зависимостей сервиса в health-endpoint'ы.
package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status — состояние компонента или сервиса целиком.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check — результат одной проверки зависимости.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — сводный ответ /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker выполняет проверку одной зависимости (БД, брокер).
type Checker interface {
	Check() Check
}

// Handler агрегирует зарегистрированные проверки.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startedAt time.Time
}

// NewHandler создаёт handler без проверок; зависимости регистрируются отдельно.
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  map[string]Checker{},
		version:   version,
		startedAt: time.Now(),
	}
}

// RegisterChecker добавляет проверку под именем name; повтор имени замещает её.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	h.checkers[name] = checker
	h.mu.Unlock()
}

// evaluate прогоняет все проверки и сводит их в общий статус.
func (h *Handler) evaluate() Response {
	resp := Response{
		Status:        StatusHealthy,
		Timestamp:     time.Now(),
		Checks:        map[string]Check{},
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}

	for _, name := range h.checkerNames() {
		check := h.runCheck(name)
		resp.Checks[name] = check

		switch check.Status {
		case StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

// ServeHTTP отдаёт сводное состояние: 503, если хоть одна зависимость
// неработоспособна, иначе 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := h.evaluate()

	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler отвечает 200, пока процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, если любая зависимость неработоспособна.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if h.evaluate().Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) checkerNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Handler) runCheck(name string) Check {
	h.mu.RLock()
	checker := h.checkers[name]
	h.mu.RUnlock()

	if checker == nil {
		return Check{Name: name, Status: StatusUnhealthy, Message: "checker removed"}
	}
	return checker.Check()
}

// SimpleChecker оборачивает функцию-пинг в Checker.
type SimpleChecker struct {
	name string
	ping func() error
}

// NewSimpleChecker создаёт проверку из функции: nil — healthy, ошибка — unhealthy.
func NewSimpleChecker(name string, ping func() error) *SimpleChecker {
	return &SimpleChecker{name: name, ping: ping}
}

// Check выполняет функцию и замеряет её длительность.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.ping()

	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}
