package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	"academy/models"
	"academy/models/course"
)

const sendTimeout = 10 * time.Second

// Notifier renders the application's emails and hands them to a Sender
type Notifier struct {
	sender Sender
	appURL string
	sync   bool
}

func NewNotifier(sender Sender, appURL string) *Notifier {
	return &Notifier{sender: sender, appURL: appURL}
}

// NewSyncNotifier delivers on the caller's goroutine.
func NewSyncNotifier(sender Sender, appURL string) *Notifier {
	return &Notifier{sender: sender, appURL: appURL, sync: true}
}

// 1. Welcome / Signup
func (n *Notifier) Welcome(user models.User) {
	if n == nil {
		return
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>Kingdom Way Academy</strong>! Your account has been created.</p>
		<p>Browse the catalog and start your first course today.</p>
		<a href="%s/courses" class="btn">Browse Courses</a>
	`, displayName(user), n.appURL)

	n.deliver(Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Welcome to Kingdom Way Academy",
		HTML:    getEmailTemplate("Welcome Onboard!", body),
		Text:    "Welcome to Kingdom Way Academy! Your account has been created.",
	})
}

// 2. Enrollment Confirmation
func (n *Notifier) EnrollmentConfirmed(user models.User, c course.Course) {
	if n == nil {
		return
	}
	courseURL := fmt.Sprintf("%s/courses/%d", n.appURL, c.ID)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open the course and start with the first lesson.
		</div>
		<a href="%s" class="btn">Start Learning</a>
	`, displayName(user), c.Title, courseURL)

	n.deliver(Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "You're enrolled: " + c.Title,
		HTML:    getEmailTemplate("Enrollment Confirmed", body),
		Text:    fmt.Sprintf("You are now enrolled in %s. Start learning: %s", c.Title, courseURL),
	})
}

// 3. Course Approved (to instructor)
func (n *Notifier) CourseApproved(instructor models.User, c course.Course) {
	if n == nil {
		return
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Great news! Your course <strong>%s</strong> has been APPROVED by the admin.</p>
		<p>It is now live for learners to enroll.</p>
	`, displayName(instructor), c.Title)

	n.deliver(Message{
		ToEmail: instructor.Email,
		ToName:  instructor.Name,
		Subject: "Course Approved: " + c.Title,
		HTML:    getEmailTemplate("Course Approved", body),
		Text:    fmt.Sprintf("Your course %s has been approved and is now live.", c.Title),
	})
}

func (n *Notifier) deliver(msg Message) {
	if n == nil || n.sender == nil {
		return
	}
	if n.sync {
		n.send(msg)
		return
	}
	go n.send(msg)
}

func (n *Notifier) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := n.sender.Send(ctx, msg); err != nil {
		log.Printf("[MAILER] failed to send %q to %s: %v", msg.Subject, msg.ToEmail, err)
		return
	}
	log.Printf("[MAILER] sent %q to %s", msg.Subject, msg.ToEmail)
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// getEmailTemplate wraps body content in the shared layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E3A5F; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #C9A227; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #C9A227; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>KINGDOM WAY ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; Kingdom Way Academy. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
