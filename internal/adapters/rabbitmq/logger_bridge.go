package rabbitmq

import (
	"search-service/internal/core/port"
	"search-service/pkg/rabbitmq/rabbitmq_common"
)

// amqpLogger пишет логи соединения и публикатора событий поиска в LoggerPort
// с полем component, чтобы их можно было отфильтровать от логов сессий.
type amqpLogger struct {
	logger port.LoggerPort
}

// NewAMQPLogger - логгер для pkg/rabbitmq; component различает соединение и публикатор
func NewAMQPLogger(logger port.LoggerPort, component string) rabbitmq_common.Logger {
	return &amqpLogger{logger: logger.WithFields(port.Fields{"component": component})}
}

func (l *amqpLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *amqpLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *amqpLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *amqpLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, port.FieldsFromKeyValues(keysAndValues...))
}
