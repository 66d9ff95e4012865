package port

import "fmt"

// Fields - структурированный контекст записи лога
type Fields map[string]interface{}

// LoggerPort определяет интерфейс для логирования в ядре сервиса.
type LoggerPort interface {
	// Info записывает информационное сообщение.
	Info(msg string, fields Fields)

	// Warn записывает предупреждение.
	Warn(msg string, fields Fields)

	// Error записывает ошибку, обычно вместе с объектом error.
	Error(msg string, err error, fields Fields)

	Debug(msg string, fields Fields)

	// WithFields создает новый экземпляр логгера с уже добавленными полями.
	WithFields(fields Fields) LoggerPort
}

// FieldsFromKeyValues собирает Fields из пар ключ-значение, как их передают
// логгеры библиотек. Нестроковый ключ приводится через fmt, непарный хвост отбрасывается.
func FieldsFromKeyValues(keysAndValues ...interface{}) Fields {
	fields := make(Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
