package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

func TestNopPublisher(t *testing.T) {
	var publisher ports.UserEventPublisher = NewNopPublisher(logger.Discard())

	err := publisher.PublishUserEvent(context.Background(), payloads.UserEventPayload{ID: "1", Type: payloads.UserDeleted})
	assert.NoError(t, err)
}
