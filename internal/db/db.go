package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yusuke-arai/chat-sessions/internal/chat"
)

func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&chat.Session{}, &chat.Message{}, &chat.Job{})
}
