package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"crmdesk.com/crmdesk/web/middlewares"
)

func main() {
	secret, err := base64.StdEncoding.DecodeString(os.Getenv("CRMDESK_SIGNING_SECRET"))
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}
	token, err := middlewares.CreateJWT("admin", 24*time.Hour, secret)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
