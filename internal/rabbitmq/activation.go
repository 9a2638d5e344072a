package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/rbenzing/slimbooks-app/internal/models"
)

// ActivationPublisher кладет задачи на отправку писем активации в очередь
// почтового воркера. Публикация идет с DeliveryMode=Persistent: задача не
// должна пропасть при перезапуске брокера, иначе учетную запись нельзя будет
// активировать.
type ActivationPublisher struct {
	ch *amqp.Channel
}

// NewActivationPublisher создает публикатора поверх открытого канала.
func NewActivationPublisher(ch *amqp.Channel) *ActivationPublisher {
	return &ActivationPublisher{ch: ch}
}

// PublishActivation сериализует задачу и публикует ее в exchange почты
// с ключом маршрутизации писем активации.
func (p *ActivationPublisher) PublishActivation(task models.ActivationTask) error {
	const op = "rabbitmq.PublishActivation"

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		MailExchange,
		ActivationRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
