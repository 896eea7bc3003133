package main

import (
	"log"

	"github.com/yusuke-arai/chat-sessions/internal/chat"
	"github.com/yusuke-arai/chat-sessions/internal/config"
	"github.com/yusuke-arai/chat-sessions/internal/db"
	"github.com/yusuke-arai/chat-sessions/internal/httpapi"
	"github.com/yusuke-arai/chat-sessions/internal/httpapi/handlers"
	"github.com/yusuke-arai/chat-sessions/internal/llm"
	"github.com/yusuke-arai/chat-sessions/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	client := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	svc := chat.NewService(chat.NewRepo(gdb), client)

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit unavailable, async chat disabled: %v", err)
		pub = nil
	} else {
		defer pub.Close()
	}

	r := httpapi.NewRouter(handlers.NewHandler(svc, pub))

	log.Printf("server listening addr=%s model=%s", cfg.HTTPAddr, cfg.OpenAIModel)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
