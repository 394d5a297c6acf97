package services

import (
	"context"
	"log"
	"strconv"

	"firebase.google.com/go/messaging"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

// PushService sends FCM notifications. A nil client disables push entirely,
// which is how the server runs without Firebase credentials.
type PushService struct {
	Client   *messaging.Client
	UserRepo *repositories.UserRepository
}

func (s *PushService) NotifyNewMessage(ctx context.Context, msg models.Message) {
	if s == nil || s.Client == nil {
		return
	}

	token, err := s.UserRepo.GetFCMToken(ctx, msg.ReceiverID)
	if err != nil || token == "" {
		return
	}

	notification := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: "New message",
			Body:  msg.Text,
		},
		Data: map[string]string{
			"chat_id":   strconv.Itoa(msg.ChatID),
			"sender_id": strconv.Itoa(msg.SenderID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "chat_messages",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: "New message",
						Body:  msg.Text,
					},
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.Client.Send(ctx, notification); err != nil {
		log.Printf("push: failed to notify user %d: %v", msg.ReceiverID, err)
	}
}
