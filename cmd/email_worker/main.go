package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/config"
	"github.com/pasarku/pasarku/pkg/helpers"
	"github.com/pasarku/pasarku/pkg/mailer"
	"github.com/pasarku/pasarku/pkg/mailer/templates"
)

// email_worker consumes email jobs from RabbitMQ and delivers them
// through Mailgun. Run it alongside the API server.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		log.Fatal("MAILGUN_DOMAIN and MAILGUN_API_KEY must be set")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}
	if err := ch.Qos(8, 0, false); err != nil {
		log.Fatalf("failed to set qos: %v", err)
	}

	deliveries, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to start consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range deliveries {
			handleDelivery(ctx, logger, mg, d)
		}
	}()

	logger.Infof("email worker consuming queue %q", cfg.RabbitMQEmailQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down email worker")

	cancel()
	_ = ch.Close()
	<-done
	logger.Info("email worker exited")
}

func handleDelivery(ctx context.Context, logger *logrus.Logger, mg *mailer.Mailgun, d amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Error("dropping malformed email job")
		_ = d.Nack(false, false)
		return
	}
	if job.To == "" {
		logger.Error("dropping email job without recipient")
		_ = d.Nack(false, false)
		return
	}

	subject := job.Subject
	html := job.HTML
	if job.Template != "" {
		rendered, err := templates.RenderHTML(job.Template, job.Data)
		if err != nil {
			logger.WithError(err).WithField("template", job.Template).Error("dropping email job with unknown template")
			_ = d.Nack(false, false)
			return
		}
		html = rendered
		if subject == "" {
			subject = templates.Subject(job.Template)
		}
	}

	if err := mg.Send(ctx, job.To, subject, job.Text, html); err != nil {
		logger.WithError(err).WithField("to", job.To).Error("failed to send email, requeueing")
		_ = d.Nack(false, true)
		return
	}
	logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	_ = d.Ack(false)
}
