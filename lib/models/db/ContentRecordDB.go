package db

import "time"

type ContentRecordDB struct {
	ID         string
	Kind       string
	Payload    []byte
	Length     int
	BaseID     *string
	TextLength int
	Checksum   int64
	CreatedAt  time.Time
}
