package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"

	"github.com/taskmanager-ai/backend/auth"
	"github.com/taskmanager-ai/backend/chat"
	"github.com/taskmanager-ai/backend/notifications/email"
	"github.com/taskmanager-ai/backend/queue"
	"github.com/taskmanager-ai/backend/scheduler"
	"github.com/taskmanager-ai/backend/server"
	"github.com/taskmanager-ai/backend/server/handlers"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

func main() {

	// Load the .env file.
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file")
	}

	// Read the environment variables from the .env file using os.Getenv.
	signingKey := os.Getenv("JWT_SIGNING_KEY")  // JWT signing key for token generation
	serverURL := os.Getenv("SERVER_URL")        // The URL where the server is running
	dbURI := os.Getenv("MONGODB_URI")           // MongoDB database URI
	dbName := os.Getenv("DB_NAME")              // The name of the MongoDB database
	smtpEmail := os.Getenv("GOOGLE_EMAIL")      // The email address used for sending notifications
	smtpPassword := os.Getenv("GOOGLE_PASS")    // The password for the email account
	redisUrl := os.Getenv("REDIS_URL")          // The Redis URL for caching dispatched emails
	rabbitMQURL := os.Getenv("RABBITMQ_URL")    // The URL for the RabbitMQ message broker
	chatAPIKey := os.Getenv("OPENAI_API_KEY")   // Chat provider credential; empty disables the relay
	chatAPIURL := os.Getenv("CHAT_API_URL")     // Optional override of the chat provider base URL
	numEmailProducers := 1                      // The number of email producers
	numEmailConsumers := 2                      // The number of email consumers
	ctx := context.Background()                 // Create a new context

	if signingKey == "" {
		log.Fatal("JWT_SIGNING_KEY is required")
	}
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	if dbName == "" {
		dbName = "taskmanager"
	}

	figure.NewFigure("Task Manager AI", "basic", true).Print()

	// The email pipeline is optional. Without broker credentials the app
	// still serves every route; password reset codes and reminder emails
	// are simply not delivered.
	var emailQueue *queue.Queue
	if rabbitMQURL != "" {
		// Initialize the email service with the email and password
		email.InitEmailService(smtpEmail, smtpPassword)

		// Initialize the email cache using the Redis URL
		emailCache := queue.InitEmailCache(redisUrl)

		// Build the email queue using the RabbitMQ URL, number of producers and consumers, and email cache
		emailQueue = queue.BuildEmailQueue(rabbitMQURL, numEmailProducers, numEmailConsumers, emailCache)

		// Start the queue consumers
		_, err = emailQueue.StartConsumers(ctx)
		if err != nil {
			log.Fatal("error starting queue consumers: ", err)
		}
	}

	// Connect to storage.
	store, err := storage.NewStorage(dbName, dbURI)
	if err != nil {
		log.Fatal("error connecting to storage: ", err)
	}

	// Initialize the authentication service
	auth.InitAuth(store, signingKey, emailQueue)

	// Start the reminder dispatcher
	dispatcher := scheduler.New(store, emailQueue, time.Local)
	if err := dispatcher.Start(); err != nil {
		log.Fatal("error starting reminder dispatcher: ", err)
	}

	var chatClient *chat.Client
	if chatAPIKey != "" {
		chatClient = chat.NewClient(chatAPIKey, chatAPIURL)
	}

	// Start the core server
	go server.Start(serverURL, handlers.New(store, chatClient))

	// Setting up the signal interrupt handler to gracefully shutdown our server
	sigs := make(chan os.Signal, 1)

	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	fmt.Println()
	fmt.Println(sig)

	dispatcher.Stop()
	if err := store.Disconnect(); err != nil {
		log.Println("error disconnecting storage: ", err)
	}
}
