package domain

// ActiveFilter - "чип" активного фильтра, который можно снять
type ActiveFilter struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
