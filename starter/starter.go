package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"freelance-checkout-system/catalog"
	"freelance-checkout-system/checkout"
	"freelance-checkout-system/codec"
	"freelance-checkout-system/currency"
	"freelance-checkout-system/models"
	"freelance-checkout-system/workflows"
)

const (
	TaskQueueName = "checkout-processing-queue"
)

func main() {
	// Command line flags
	serviceID := flag.String("service", "SVC-WEB-DEV", "Catalog service ID")
	quantity := flag.Int("quantity", 1, "Quantity")
	currencyFlag := flag.String("currency", "INR", "Display currency (INR or USD)")
	name := flag.String("name", "Test Customer", "Contact name")
	email := flag.String("email", "customer@example.com", "Contact email")
	phone := flag.String("phone", "+911234567890", "Contact phone")
	resume := flag.String("resume", "", "Path to resume file (if the service requires one)")
	documents := flag.String("documents", "", "Comma-separated document paths (if required)")
	list := flag.Bool("list", false, "List catalog services and exit")
	signal := flag.String("signal", "", "Send signal to a checkout (pay or abandon)")
	paymentID := flag.String("payment-id", "", "Gateway payment id for the pay signal")
	query := flag.Bool("query", false, "Query checkout state")
	workflowID := flag.String("workflow-id", "", "Workflow ID for signal/query operations")
	flag.Parse()

	if *list {
		for _, svc := range catalog.List() {
			fmt.Printf("%-14s %-24s %s  resume=%v documents=%v\n",
				svc.ID, svc.Title, currency.Format(svc.BasePrice, models.CurrencyINR),
				svc.RequiresResume, svc.RequiresDocuments)
		}
		return
	}

	// Get Temporal server address from environment or use default
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

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
		log.Printf("Warning: Using generated encryption key. Set ENCRYPTION_KEY env var to match worker.")
		log.Printf("Generated key: %s", hex.EncodeToString(keyBytes))
	}

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

	ctx := context.Background()

	if *signal != "" {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for signal operations. Use -workflow-id flag")
		}
		sendSignal(ctx, c, *workflowID, *signal, *paymentID)
		return
	}

	if *query {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for query operations. Use -workflow-id flag")
		}
		queryCheckoutState(ctx, c, *workflowID)
		return
	}

	startCheckout(ctx, c, *serviceID, *quantity, *currencyFlag, *name, *email, *phone, *resume, *documents)
}

func startCheckout(ctx context.Context, c client.Client, serviceID string, quantity int, currencyFlag, name, email, phone, resume, documents string) {
	svc, ok := catalog.ByID(serviceID)
	if !ok {
		log.Fatalf("Unknown service %q. Use -list to see the catalog.", serviceID)
	}

	rateURL := os.Getenv("RATE_URL")
	if rateURL == "" {
		rateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	}
	rates := currency.New(rateURL, nil)
	rate := rates.Rate(ctx)

	// Drive the form through the same reducer the UI uses.
	session := checkout.Reduce(checkout.NewSession(), checkout.OpenForm{Service: svc, Rate: rate})
	session = checkout.Reduce(session, checkout.SetContact{Name: name, Email: email, Phone: phone})
	for i := 1; i < quantity; i++ {
		session = checkout.Reduce(session, checkout.IncrementQuantity{})
	}
	if strings.EqualFold(currencyFlag, string(models.CurrencyUSD)) {
		session = checkout.Reduce(session, checkout.SetCurrency{Currency: models.CurrencyUSD, Rate: rate})
	}
	if resume != "" {
		session = checkout.Reduce(session, checkout.AttachResume{File: fileRef(resume)})
	}
	for _, doc := range strings.Split(documents, ",") {
		if doc = strings.TrimSpace(doc); doc != "" {
			session = checkout.Reduce(session, checkout.AttachDocument{File: fileRef(doc)})
		}
	}
	session = checkout.Reduce(session, checkout.Submit{})

	input := workflows.CheckoutInput{
		CheckoutID: uuid.New().String(),
		Service:    svc,
		Form:       session.Form,
		UserID:     "cli-user",
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("checkout-workflow-%s", input.CheckoutID),
		TaskQueue: TaskQueueName,
	}

	log.Printf("Starting checkout for service: %s", svc.Title)
	log.Printf("Total: %s", currency.Format(session.Form.Total(), session.Form.SelectedCurrency))
	log.Printf("Workflow ID: %s", workflowOptions.ID)

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.CheckoutWorkflow, input)
	if err != nil {
		log.Fatalf("Unable to execute workflow: %v", err)
	}

	log.Printf("Started workflow successfully")
	log.Printf("WorkflowID: %s", we.GetID())
	log.Printf("RunID: %s", we.GetRunID())
	log.Println("\nTo query checkout state, run:")
	log.Printf("  go run starter/starter.go -query -workflow-id %s\n", we.GetID())
	log.Println("To complete or abandon the payment, run:")
	log.Printf("  go run starter/starter.go -signal pay -payment-id pay_test123 -workflow-id %s", workflows.GatewayPaymentWorkflowID(input.CheckoutID))
	log.Printf("  go run starter/starter.go -signal abandon -workflow-id %s", workflows.GatewayPaymentWorkflowID(input.CheckoutID))

	log.Println("\nWaiting for checkout to complete...")
	var order models.Order
	err = we.Get(ctx, &order)
	if err != nil {
		log.Printf("Checkout completed with error: %v", err)
	} else {
		log.Printf("Checkout completed successfully! Order ID: %s", order.ID)
	}
}

func fileRef(path string) models.FileRef {
	ref := models.FileRef{
		Name: filepath.Base(path),
		Path: path,
	}
	if info, err := os.Stat(path); err == nil {
		ref.Size = info.Size()
	}
	return ref
}

func sendSignal(ctx context.Context, c client.Client, workflowID, signal, paymentID string) {
	log.Printf("Sending signal '%s' to workflow: %s", signal, workflowID)

	var signalName string
	var payload interface{}
	switch signal {
	case "pay":
		if paymentID == "" {
			paymentID = "pay_" + uuid.New().String()[:12]
		}
		signalName = workflows.SignalPaymentCompleted
		payload = models.PaymentResult{PaymentID: paymentID}
	case "abandon":
		signalName = workflows.SignalAbandon
		payload = signal
	default:
		log.Fatalf("Unknown signal: %s. Valid signals: pay, abandon", signal)
	}

	err := c.SignalWorkflow(ctx, workflowID, "", signalName, payload)
	if err != nil {
		log.Fatalf("Failed to send signal: %v", err)
	}

	log.Printf("Signal '%s' sent successfully", signal)
}

func queryCheckoutState(ctx context.Context, c client.Client, workflowID string) {
	log.Printf("Querying checkout state: %s", workflowID)

	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryState)
	if err != nil {
		log.Fatalf("Failed to query workflow: %v", err)
	}

	var state models.CheckoutState
	if err := resp.Get(&state); err != nil {
		log.Fatalf("Failed to decode query result: %v", err)
	}

	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal state: %v", err)
	}

	log.Println("\nCheckout State:")
	fmt.Println(string(stateJSON))
}
