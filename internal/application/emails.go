package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/pkg/helpers"
	"github.com/pasarku/pasarku/pkg/mailer"
)

// publishEmail enqueues an email job. Email is best-effort: a missing
// publisher or a publish failure never fails the request.
func publishEmail(ctx context.Context, pub *helpers.RabbitPublisher, logger *logrus.Logger, job mailer.EmailJob) {
	if pub == nil {
		return
	}
	if err := pub.PublishJSON(ctx, job); err != nil && logger != nil {
		logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}
