package constants

// Аналитика поиска
const (
	SearchEventsExchange     = "search_events_exchange"
	SearchEventsExchangeType = "topic"

	SearchPerformedRoutingKey = "search.performed"
)

// Точность geohash в событиях: ячейка около 5 км, точнее наружу не отдаем
const SearchEventGeohashPrecision = 5
