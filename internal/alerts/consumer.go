package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/outbox/idempotency"
	"github.com/sahelretail/pos-backend/pkg/outbox/payloads"
)

const alertConsumer = "alerts-worker"

type consumerRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
}

// Consumer watches domain events and materializes admin alerts.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the alert consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("alert repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !alertableEvent(eventType) {
		c.logg.Info(logCtx, "skipping event without alert mapping")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, alertConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	alert, err := c.buildAlert(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, alertConsumer, eventID)
		return processResult{nack: true}
	}

	if err := c.repo.Create(ctx, alert); err != nil {
		c.logg.Error(logCtx, "alert creation failed", err)
		_ = c.idempotency.Delete(ctx, alertConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "alert created")
	return processResult{ack: true}
}

func alertableEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventStockReduced,
		enums.EventTransferRequested,
		enums.EventTransferApproved,
		enums.EventTransferRejected,
		enums.EventTransferReceived,
		enums.EventEmployeeCreated,
		enums.EventProductDeleted:
		return true
	default:
		return false
	}
}

func (c *Consumer) buildAlert(eventType enums.OutboxEventType, data json.RawMessage) (*models.Alert, error) {
	switch eventType {
	case enums.EventStockReduced:
		var payload payloads.StockReducedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return stockReducedAlert(payload), nil
	case enums.EventTransferRequested:
		var payload payloads.TransferRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return transferRequestedAlert(payload), nil
	case enums.EventTransferApproved, enums.EventTransferRejected:
		var payload payloads.TransferDecidedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return transferDecidedAlert(payload), nil
	case enums.EventTransferReceived:
		var payload payloads.TransferReceivedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return transferReceivedAlert(payload), nil
	case enums.EventEmployeeCreated:
		var payload payloads.EmployeeCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return employeeCreatedAlert(payload), nil
	case enums.EventProductDeleted:
		var payload payloads.ProductDeletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return productDeletedAlert(payload), nil
	default:
		return nil, fmt.Errorf("no alert mapping for %s", eventType)
	}
}

func stockReducedAlert(payload payloads.StockReducedEvent) *models.Alert {
	severity := enums.AlertSeverityWarning
	if payload.Balance == 0 {
		severity = enums.AlertSeverityCritical
	}
	message := fmt.Sprintf("%s reduced by %d, %d left.", payload.ProductName, payload.Quantity, payload.Balance)
	if payload.Reason != "" {
		message = fmt.Sprintf("%s reduced by %d (%s), %d left.", payload.ProductName, payload.Quantity, payload.Reason, payload.Balance)
	}
	warehouseID := payload.WarehouseID
	productID := payload.ProductID
	return &models.Alert{
		Type:        enums.AlertTypeStockReduction,
		Severity:    severity,
		Title:       "Stock reduced",
		Message:     message,
		WarehouseID: &warehouseID,
		ReferenceID: &productID,
	}
}

func transferRequestedAlert(payload payloads.TransferRequestedEvent) *models.Alert {
	message := fmt.Sprintf("Transfer of %s requested.", payload.ProductName)
	if payload.Quantity != nil {
		message = fmt.Sprintf("Transfer of %d x %s requested.", *payload.Quantity, payload.ProductName)
	}
	warehouseID := payload.SourceWarehouseID
	transferID := payload.TransferID
	return &models.Alert{
		Type:        enums.AlertTypeTransferRequest,
		Severity:    enums.AlertSeverityInfo,
		Title:       "Transfer requested",
		Message:     message,
		WarehouseID: &warehouseID,
		ReferenceID: &transferID,
	}
}

func transferDecidedAlert(payload payloads.TransferDecidedEvent) *models.Alert {
	warehouseID := payload.SourceWarehouseID
	transferID := payload.TransferID
	if payload.Status == enums.TransferStatusRejected {
		message := fmt.Sprintf("Transfer of %s rejected.", payload.ProductName)
		if payload.Reason != "" {
			message = fmt.Sprintf("Transfer of %s rejected: %s", payload.ProductName, payload.Reason)
		}
		return &models.Alert{
			Type:        enums.AlertTypeTransferRejection,
			Severity:    enums.AlertSeverityWarning,
			Title:       "Transfer rejected",
			Message:     message,
			WarehouseID: &warehouseID,
			ReferenceID: &transferID,
		}
	}
	return &models.Alert{
		Type:        enums.AlertTypeTransferApproval,
		Severity:    enums.AlertSeverityInfo,
		Title:       "Transfer approved",
		Message:     fmt.Sprintf("Transfer of %d x %s approved.", payload.Quantity, payload.ProductName),
		WarehouseID: &warehouseID,
		ReferenceID: &transferID,
	}
}

func transferReceivedAlert(payload payloads.TransferReceivedEvent) *models.Alert {
	warehouseID := payload.DestWarehouseID
	transferID := payload.TransferID
	return &models.Alert{
		Type:        enums.AlertTypeTransferReception,
		Severity:    enums.AlertSeverityInfo,
		Title:       "Transfer received",
		Message:     fmt.Sprintf("%d x %s received.", payload.Quantity, payload.ProductName),
		WarehouseID: &warehouseID,
		ReferenceID: &transferID,
	}
}

func employeeCreatedAlert(payload payloads.EmployeeCreatedEvent) *models.Alert {
	employeeID := payload.EmployeeID
	return &models.Alert{
		Type:        enums.AlertTypeEmployeeCreation,
		Severity:    enums.AlertSeverityInfo,
		Title:       "Employee created",
		Message:     fmt.Sprintf("%s joined as %s.", payload.FullName, payload.Role),
		ReferenceID: &employeeID,
	}
}

func productDeletedAlert(payload payloads.ProductDeletedEvent) *models.Alert {
	productID := payload.ProductID
	return &models.Alert{
		Type:        enums.AlertTypeProductDeletion,
		Severity:    enums.AlertSeverityWarning,
		Title:       "Product deleted",
		Message:     fmt.Sprintf("%s (%s) removed from the catalog.", payload.Name, payload.SKU),
		ReferenceID: &productID,
	}
}
