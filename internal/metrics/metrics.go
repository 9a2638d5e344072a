// Package metrics содержит счетчики Prometheus для основных операций админки.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UsersCreated количество успешно созданных учетных записей.
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slimbooks_users_created_total",
		Help: "Total number of user accounts created.",
	})
	// UsersUpdated количество успешно обновленных учетных записей.
	UsersUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slimbooks_users_updated_total",
		Help: "Total number of user accounts updated.",
	})
	// UsersDeleted количество мягко удаленных учетных записей.
	UsersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slimbooks_users_deleted_total",
		Help: "Total number of user accounts soft-deleted.",
	})
	// LoginFailures количество неудачных попыток входа.
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slimbooks_login_failures_total",
		Help: "Total number of failed login attempts.",
	})
)
