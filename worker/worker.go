package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"freelance-checkout-system/activities"
	"freelance-checkout-system/codec"
	"freelance-checkout-system/gateway"
	"freelance-checkout-system/workflows"
)

// Version information - update this when deploying new versions
const (
	WorkerVersion = "1.0.0"
	BuildID       = "1.0.0"
)

const (
	TaskQueueName = "checkout-processing-queue"
)

func main() {
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	// Base URL of the checkout API hosting the upload, create-order and
	// orders endpoints.
	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8080"
	}

	gatewayScriptURL := os.Getenv("GATEWAY_SCRIPT_URL")
	gatewayKey := os.Getenv("RAZORPAY_KEY_ID")

	// Get or generate encryption key
	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	var keyBytes []byte
	var err error

	if encryptionKey != "" {
		keyBytes, err = hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
	} else {
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Printf("Generated encryption key: %s", hex.EncodeToString(keyBytes))
		log.Println("Set ENCRYPTION_KEY environment variable to use this key in production")
	}

	// Create data converter with encryption
	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	buildID := os.Getenv("BUILD_ID")
	if buildID == "" {
		buildID = BuildID
	}

	w := worker.New(c, TaskQueueName, worker.Options{
		BuildID:                                buildID,
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.CheckoutWorkflow)
	w.RegisterWorkflow(workflows.GatewayPaymentWorkflow)

	// Register activities
	checkoutActivities := activities.NewCheckoutActivities(apiBaseURL, apiBaseURL)
	w.RegisterActivity(checkoutActivities.UploadAttachment)
	w.RegisterActivity(checkoutActivities.PersistOrder)
	w.RegisterActivity(checkoutActivities.NotifyCustomer)

	gatewayActivities := activities.NewGatewayActivities(
		gateway.NewClient(apiBaseURL),
		gateway.NewScriptWidget(gatewayScriptURL),
		gatewayKey,
	)
	w.RegisterActivity(gatewayActivities.CreateGatewayOrder)
	w.RegisterActivity(gatewayActivities.OpenCheckoutWidget)

	log.Println("Starting checkout worker...")
	log.Printf("Worker Version: %s", WorkerVersion)
	log.Printf("Build ID: %s", buildID)
	log.Printf("Temporal address: %s", temporalAddress)
	log.Printf("Task queue: %s", TaskQueueName)
	log.Printf("API base URL: %s", apiBaseURL)
	log.Println("Registered workflows: CheckoutWorkflow, GatewayPaymentWorkflow")
	log.Println("Encryption: Enabled")

	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Unable to start worker: %v", err)
	}
}
