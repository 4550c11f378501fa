package rabbitmq

// Exchange direct exchange для всех почтовых сообщений.
const Exchange = "notifications"

const prefetch = 10

// Ключи маршрутизации.
const (
	RoutingActivation = "activation"
	RoutingExpiry     = "expiry"
)

// Имена очередей.
const (
	QueueActivation = "email.activation"
	QueueExpiry     = "email.expiry"
)

// QueueConfig привязывает очередь к ключу маршрутизации в Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEmailQueues возвращает все очереди, которые читает sender.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueActivation, RoutingKey: RoutingActivation},
		{QueueName: QueueExpiry, RoutingKey: RoutingExpiry},
	}
}
