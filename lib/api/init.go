package api

import (
	"github.com/ether/articlestore/lib"
	"github.com/ether/articlestore/lib/api/revision"
	"github.com/ether/articlestore/lib/api/stats"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// NewApp returns the fiber app with the JSON codec used across the API.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
}

func InitAPI(store *lib.InitStore) {
	stats.Init(store)
	revision.Init(store)
}
