//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/estatery/service-rental/internal/application"
	bookingDomain "github.com/estatery/service-rental/internal/domain/booking"
	rentalEvents "github.com/estatery/service-rental/internal/events"
	"github.com/estatery/service-rental/internal/platform/database"
	"github.com/estatery/service-rental/internal/platform/kafka"
	"github.com/estatery/service-rental/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Properties      *application.PropertyService
	Bookings        *application.BookingService
	Payments        *application.PaymentService
	Consumer        *rentalEvents.PaymentEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the migrations and
// returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_rental",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", logger))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, rentalEvents.TopicBookingEvents, rentalEvents.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires the services to Postgres and Kafka the way cmd/server does.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	notifier := rentalEvents.NewKafkaNotifier(producer, logger)
	txManager := repository.NewGormTxManager(db, 2*time.Second)
	clock := application.SystemClock{}

	bookings := application.NewBookingService(txManager, bookingDomain.NewMonthlyPricingStrategy(), notifier, clock, logger)
	payments := application.NewPaymentService(txManager, clock, logger)
	properties := application.NewPropertyService(txManager, notifier, clock, logger)

	groupID := fmt.Sprintf("test-rental-%s", uuid.New().String()[:8])
	consumer := rentalEvents.NewPaymentEventConsumer(brokers, groupID, payments, logger)

	return &rentalStack{
		Properties:      properties,
		Bookings:        bookings,
		Payments:        payments,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedProperty lists a property with a 3-month minimum stay starting on the 1st.
func seedProperty(t *testing.T, stack *rentalStack, ownerID uuid.UUID) *application.PropertyDTO {
	t.Helper()
	monthly := "1000"
	p, err := stack.Properties.CreateProperty(context.Background(), ownerID, application.CreatePropertyRequest{
		Title:             "Integration flat",
		City:              "Accra",
		DailyPrice:        "40",
		MonthlyPrice:      &monthly,
		MinStayMonths:     3,
		MonthlyCycleStart: 1,
	})
	require.NoError(t, err)
	return p
}

// futureStay returns a stay of months starting on the 1st of a month offset months ahead.
func futureStay(propertyID uuid.UUID, offset, months int) application.CreateBookingRequest {
	now := time.Now().UTC()
	in := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, months, 0)
	return application.CreateBookingRequest{StayRequest: application.StayRequest{
		PropertyID: propertyID,
		CheckIn:    in.Format("2006-01-02"),
		CheckOut:   out.Format("2006-01-02"),
	}}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, key, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the booking_payments table until the status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, paymentID uuid.UUID, expectedStatus string, timeout time.Duration) repository.PaymentModel {
	t.Helper()
	var result repository.PaymentModel
	require.Eventually(t, func() bool {
		var model repository.PaymentModel
		if err := db.Where("id = ?", paymentID).First(&model).Error; err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "payment did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(time.Second)
}
