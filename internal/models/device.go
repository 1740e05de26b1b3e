package models

import "time"

// Device представляет зарегистрированное устройство на сервере.
// SecretHash содержит bcrypt хеш секрета устройства; сам секрет сервер
// не хранит.
type Device struct {
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
}
