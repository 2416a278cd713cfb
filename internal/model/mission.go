package model

import "encoding/json"

// MissionStatus — статус миссии, как его отдаёт сервер ("active", "completed", ...).
type MissionStatus string

const (
	MissionStatusActive    MissionStatus = "active"
	MissionStatusCompleted MissionStatus = "completed"
)

// Goal — цель миссии в том виде, в каком её прислал сервер: объект ({"type":"rope_skips","target":600}),
// строка или null. Клиент её не интерпретирует, только хранит и передаёт дальше.
type Goal json.RawMessage

func (g Goal) MarshalJSON() ([]byte, error) {
	if len(g) == 0 {
		return []byte("null"), nil
	}
	return g, nil
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = nil
		return nil
	}
	*g = append((*g)[:0], data...)
	return nil
}

// Text — цель для показа: у строки значение без кавычек, иначе JSON как пришёл; null — пустая строка.
func (g Goal) Text() string {
	if len(g) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(g, &s); err == nil {
		return s
	}
	return string(g)
}

type Mission struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	XPReward    int           `json:"xp_reward"`
	Goal        Goal          `json:"goal"`
	Status      MissionStatus `json:"status"`
}

// TotalXP суммирует награду по списку миссий (для заголовка страницы и вывода CLI).
func TotalXP(missions []Mission) int {
	total := 0
	for _, m := range missions {
		total += m.XPReward
	}
	return total
}
