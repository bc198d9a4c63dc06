package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
)

const (
	_defaultImageID = "Unknown Image"
	_defaultReason  = "No reason provided"
)

type UseCase struct {
	sender infrastructure.MailSender

	logger logger.Interface
}

func New(sender infrastructure.MailSender, l logger.Interface) *UseCase {
	return &UseCase{
		sender: sender,
		logger: l,
	}
}

// HandleFeedEvent sends one status notification when the event is a
// modification whose status differs from the previous image. Creations,
// removals and modifications that leave status untouched are ignored.
func (uc *UseCase) HandleFeedEvent(ctx context.Context, event *entity.FeedEvent) error {
	if !ShouldNotify(event) {
		return nil
	}

	subject, body := composeMail(event.After)

	if err := uc.sender.Send(ctx, subject, body); err != nil {
		return fmt.Errorf("NotifyUseCase - HandleFeedEvent - uc.sender.Send: %w", err)
	}

	uc.logger.Info("notify - sent status notification for image %s", event.After.ID)

	return nil
}

// ShouldNotify is the trigger rule: modify events only, both images present,
// after.status set and different from before.status.
func ShouldNotify(event *entity.FeedEvent) bool {
	if event.Kind != entity.FeedModify {
		return false
	}

	if event.Before == nil || event.After == nil {
		return false
	}

	if event.After.Status == nil {
		return false
	}

	if event.Before.Status != nil && *event.Before.Status == *event.After.Status {
		return false
	}

	return true
}

func composeMail(after *entity.ImageRecord) (subject, htmlBody string) {
	imageID := after.ID
	if imageID == "" {
		imageID = _defaultImageID
	}

	reason := _defaultReason
	if after.Reason != nil && *after.Reason != "" {
		reason = *after.Reason
	}

	reviewDate := time.Now().Format(time.RFC3339)
	if after.ReviewDate != nil && *after.ReviewDate != "" {
		reviewDate = *after.ReviewDate
	}

	statusText := "rejected"
	statusColor := "#dc3545"
	if *after.Status == entity.StatusPass {
		statusText = "approved"
		statusColor = "#28a745"
	}

	subject = fmt.Sprintf("Photo Status Update: %s", imageID)

	htmlBody = fmt.Sprintf(`
	<html>
	  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	    <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
	      <h2>Photo Status Update</h2>
	      <p>Hello,</p>
	      <p>A photo has been reviewed with the following update:</p>

	      <div style="margin: 20px 0; padding: 15px; border-left: 4px solid %[4]s; background-color: #f9f9f9;">
	        <p><strong>Image:</strong> %[1]s</p>
	        <p><strong>Status:</strong> <span style="color: %[4]s; font-weight: bold;">%[5]s</span></p>
	        <p><strong>Reason:</strong> %[2]s</p>
	        <p><strong>Review Date:</strong> %[3]s</p>
	      </div>
	    </div>
	  </body>
	</html>
	`, imageID, reason, reviewDate, statusColor, strings.ToUpper(statusText))

	return subject, htmlBody
}
