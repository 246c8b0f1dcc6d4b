package billingController

import (
	"log"

	"academy/apperr"
	"academy/database"
	"academy/middleware"
	"academy/models/course"
	"academy/payments"
	"academy/services/subscription"
	billingValidator "academy/validators/billing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BillingController struct {
	DB            *gorm.DB
	Payments      payments.Provider
	Subscriptions *subscription.Synchronizer
}

// Checkout opens a hosted checkout for a plan tier or a single paid course
func (h *BillingController) Checkout(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCheckout").(*billingValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	ctx := c.UserContext()

	if reqData.Tier != "" {
		session, err := h.Payments.SubscriptionCheckout(ctx, user, reqData.Tier)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", session)
	}

	db := h.DB.WithContext(ctx)
	var target course.Course
	if err := db.Where("id = ? AND status = ? AND is_deleted = ?", reqData.CourseID, course.StatusPublished, false).
		First(&target).Error; err != nil {
		if database.IsNotFound(err) {
			return middleware.ErrorResponse(c, apperr.ErrCourseNotFound)
		}
		return middleware.ErrorResponse(c, err)
	}

	var enrolled int64
	if err := db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, target.ID).
		Count(&enrolled).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if enrolled > 0 {
		return middleware.ErrorResponse(c, apperr.ErrAlreadyEnrolled)
	}

	session, err := h.Payments.CourseCheckout(ctx, user, target)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", session)
}

// Portal opens the provider's billing portal for the caller's customer
func (h *BillingController) Portal(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	session, err := h.Payments.PortalSession(c.UserContext(), user)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Portal session created!", session)
}

// StripeWebhook authenticates the raw body and applies the event. A failure
// to apply answers 500 so the provider redelivers.
func (h *BillingController) StripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get(payments.SignatureHeader)

	raw, err := h.Payments.VerifyEvent(payload, signature)
	if err != nil {
		log.Printf("[WEBHOOK] rejected delivery: %v", err)
		return middleware.ErrorResponse(c, err)
	}

	ev, err := subscription.FromStripe(raw)
	if err != nil {
		log.Printf("[WEBHOOK] malformed %s event %s: %v", raw.Type, raw.ID, err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Malformed event payload!", nil)
	}
	if ev == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event received.", fiber.Map{"received": true})
	}

	out, err := h.Subscriptions.Apply(c.UserContext(), ev)
	if err != nil {
		log.Printf("[WEBHOOK] failed to apply %s event %s: %v", raw.Type, raw.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed.", out)
}
