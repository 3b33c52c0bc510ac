//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/bookwise/service-availability/internal/application"
	"github.com/bookwise/service-availability/internal/events"
	"github.com/bookwise/service-availability/internal/pkg/kafka"
	"github.com/bookwise/service-availability/internal/repository"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// availabilityStack holds wired-up availability service components.
type availabilityStack struct {
	Repo     *repository.GormBookingRepository
	Service  *application.AvailabilityService
	Consumer *events.BookingEventConsumer
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_availability",
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

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_availability sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.BookingModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

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

// setupAvailabilityStack wires up the repository, service, and event consumer.
func setupAvailabilityStack(t *testing.T, db *gorm.DB, brokers []string) *availabilityStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	repo := repository.NewGormBookingRepository(db)
	svc := application.NewAvailabilityService(repo, logger)

	groupID := fmt.Sprintf("test-availability-%s", uuid.New().String()[:8])
	consumer := events.NewBookingEventConsumer(brokers, groupID, repo, logger)

	return &availabilityStack{
		Repo:     repo,
		Service:  svc,
		Consumer: consumer,
	}
}

// seedBooking inserts a booking row directly into the read model.
func seedBooking(t *testing.T, db *gorm.DB, id, ownerRef uuid.UUID, startsAt, endsAt, canceledAt *time.Time) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.BookingModel{
		ID:         id,
		OwnerRef:   ownerRef,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		CanceledAt: canceledAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishBookingEvent wraps data in a CloudEvent and writes it to the booking topic.
func publishBookingEvent(t *testing.T, brokers []string, eventType string, data interface{}) {
	t.Helper()
	ce, err := kafka.NewCloudEvent("bookwise.booking.test", eventType, data)
	require.NoError(t, err, "failed to create cloud event")
	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    events.TopicBookingEvents,
		Balancer: &kafkago.LeastBytes{},
	}
	defer func() { _ = writer.Close() }()

	err = writer.WriteMessages(context.Background(), kafkago.Message{Value: raw})
	require.NoError(t, err, "failed to publish event")
}

// waitForBooking polls the bookings table until the predicate matches.
func waitForBooking(t *testing.T, db *gorm.DB, bookingID uuid.UUID, match func(repository.BookingModel) bool, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if match(model) {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking %s did not reach expected state", bookingID)
	return result
}

// createTopics pre-creates Kafka topics so writers don't fail with "Unknown Topic".
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
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
