package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"trademark-backend/mailer"
	"trademark-backend/middlewares"
)

const maxUploadBytes = 10 * 1024 * 1024 // 10 MB per attachment

// LeadController relays the public intake forms by email. Submissions are
// not persisted; the inbox is the system of record for leads.
type LeadController struct {
	mail mailer.Mailer
}

func NewLeadController(mail mailer.Mailer) *LeadController {
	return &LeadController{mail: mail}
}

func (ct *LeadController) send(c *fiber.Ctx, msg *mailer.Message) error {
	if err := ct.mail.Send(msg); err != nil {
		log.Printf("lead relay failed (%s): %v", c.Path(), err)
		if errors.Is(err, mailer.ErrNotConfigured) {
			return fiber.NewError(fiber.StatusInternalServerError, "email relay is not configured")
		}
		return fiber.NewError(fiber.StatusBadGateway, "unable to send your message right now")
	}
	return c.JSON(fiber.Map{"success": true})
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

// Contact handles POST /api/contact.
func (ct *LeadController) Contact(c *fiber.Ctx) error {
	var input struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Phone   string `json:"phone" validate:"required"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	subject := input.Subject
	if subject == "" {
		subject = "New contact form submission from " + input.Name
	}

	body := fmt.Sprintf(`Name: %s
Email: %s
Phone: %s
Subject: %s

Message:
%s`, input.Name, input.Email, input.Phone, subject, orNotProvided(input.Message))

	return ct.send(c, &mailer.Message{
		FromName: input.Name,
		ReplyTo:  input.Email,
		Subject:  subject,
		Body:     body,
	})
}

// Consultancy handles POST /api/consultancy.
func (ct *LeadController) Consultancy(c *fiber.Ctx) error {
	var input struct {
		FirstName string `json:"firstName" validate:"required"`
		LastName  string `json:"lastName" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"required"`
		Topic     string `json:"topic" validate:"required"`
		Message   string `json:"message"`
	}
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	fullName := strings.TrimSpace(input.FirstName + " " + input.LastName)
	body := fmt.Sprintf(`Name: %s
Email: %s
Phone: %s
Topic: %s

Message:
%s`, fullName, input.Email, input.Phone, input.Topic, orNotProvided(input.Message))

	return ct.send(c, &mailer.Message{
		FromName: fullName,
		ReplyTo:  input.Email,
		Subject:  "New trademark consultancy request from " + fullName,
		Body:     body,
	})
}

var assetLabels = map[string]string{
	"name":   "Name",
	"logo":   "Logo",
	"slogan": "Slogan",
}

// TrademarkRegistration handles POST /api/trademark-registration. The form
// is multipart: an optional logo file rides along as an attachment.
func (ct *LeadController) TrademarkRegistration(c *fiber.Ctx) error {
	fullName := strings.TrimSpace(c.FormValue("fullName"))
	company := strings.TrimSpace(c.FormValue("company"))
	email := strings.TrimSpace(c.FormValue("email"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	goodsServices := strings.TrimSpace(c.FormValue("goodsServices"))
	currentUse := strings.TrimSpace(c.FormValue("currentUse"))
	websiteURL := strings.TrimSpace(c.FormValue("websiteUrl"))
	additionalNotes := strings.TrimSpace(c.FormValue("additionalNotes"))

	if fullName == "" || email == "" || phone == "" || goodsServices == "" {
		return fiber.NewError(fiber.StatusBadRequest,
			"full name, email, phone, and goods & services details are required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}
	assets := form.Value["assets"]
	if len(assets) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "select at least one asset to protect")
	}

	var assetLines []string
	var attachments []mailer.Attachment
	for _, asset := range assets {
		switch strings.ToLower(asset) {
		case "name":
			markName := strings.TrimSpace(c.FormValue("markName"))
			if markName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "provide the name you want to protect")
			}
			assetLines = append(assetLines, "- Name: "+markName)
		case "slogan":
			sloganText := strings.TrimSpace(c.FormValue("sloganText"))
			if sloganText == "" {
				return fiber.NewError(fiber.StatusBadRequest, "provide the slogan you want to protect")
			}
			assetLines = append(assetLines, "- Slogan: "+sloganText)
		case "logo":
			fh, err := c.FormFile("logo")
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "attach the logo file you want to protect")
			}
			if fh.Size > maxUploadBytes {
				return fiber.NewError(fiber.StatusBadRequest, "logo file exceeds the 10 MB limit")
			}
			f, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "could not read the logo file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "could not read the logo file")
			}
			attachments = append(attachments, mailer.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
			assetLines = append(assetLines, "- Logo: "+fh.Filename+" (attached)")
		default:
			if label, ok := assetLabels[strings.ToLower(asset)]; ok {
				assetLines = append(assetLines, "- "+label)
			}
		}
	}

	body := fmt.Sprintf(`Full name: %s
Company: %s
Email: %s
Phone: %s

Assets to protect:
%s

Goods & services:
%s

Current use: %s
Website: %s

Additional notes:
%s`,
		fullName, orNotProvided(company), email, phone,
		strings.Join(assetLines, "\n"),
		goodsServices,
		orNotProvided(currentUse), orNotProvided(websiteURL),
		orNotProvided(additionalNotes))

	return ct.send(c, &mailer.Message{
		FromName:    fullName,
		ReplyTo:     email,
		Subject:     "New trademark registration intake from " + fullName,
		Body:        body,
		Attachments: attachments,
	})
}

var abandonmentReasonLabels = map[string]string{
	"missed-office-action": "Missed Office Action",
	"missed-sou":           "Missed Statement of Use (SOU)",
	"uspto-rejection":      "USPTO Rejection",
	"other":                "Other",
	"unknown":              "Don't Know",
}

var usageChannelLabels = map[string]string{
	"website":       "Website",
	"amazon":        "Amazon",
	"shopify":       "Shopify",
	"instagram":     "Instagram",
	"product-label": "Product Label",
	"none":          "None yet",
}

// TrademarkRevival handles POST /api/trademark-revival.
func (ct *LeadController) TrademarkRevival(c *fiber.Ctx) error {
	fullName := strings.TrimSpace(c.FormValue("fullName"))
	company := strings.TrimSpace(c.FormValue("company"))
	email := strings.TrimSpace(c.FormValue("email"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	trademarkName := strings.TrimSpace(c.FormValue("trademarkName"))
	serialNumber := strings.TrimSpace(c.FormValue("serialNumber"))
	goodsServices := strings.TrimSpace(c.FormValue("goodsServices"))
	abandonmentDate := strings.TrimSpace(c.FormValue("abandonmentDate"))
	abandonmentReason := strings.TrimSpace(c.FormValue("abandonmentReason"))
	brandUse := strings.TrimSpace(c.FormValue("brandUse"))
	presenceURL := strings.TrimSpace(c.FormValue("presenceUrl"))

	if fullName == "" || email == "" || phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "full name, email, and phone number are required")
	}
	if trademarkName == "" || goodsServices == "" || abandonmentReason == "" {
		return fiber.NewError(fiber.StatusBadRequest,
			"trademark name, goods/services description, and abandonment reason are required")
	}

	reason := abandonmentReason
	if label, ok := abandonmentReasonLabels[abandonmentReason]; ok {
		reason = label
	}

	var channels []string
	if form, err := c.MultipartForm(); err == nil {
		for _, ch := range form.Value["usageChannels"] {
			if label, ok := usageChannelLabels[ch]; ok {
				channels = append(channels, label)
			} else {
				channels = append(channels, ch)
			}
		}
	}

	body := fmt.Sprintf(`Full name: %s
Company: %s
Email: %s
Phone: %s

Trademark: %s
Serial number: %s
Goods & services:
%s

Abandonment date: %s
Abandonment reason: %s

Brand use:
%s

Online presence: %s
Usage channels: %s`,
		fullName, orNotProvided(company), email, phone,
		trademarkName, orNotProvided(serialNumber), goodsServices,
		orNotProvided(abandonmentDate), reason,
		orNotProvided(brandUse),
		orNotProvided(presenceURL), orNotProvided(strings.Join(channels, ", ")))

	return ct.send(c, &mailer.Message{
		FromName: fullName,
		ReplyTo:  email,
		Subject:  "New trademark revival intake from " + fullName,
		Body:     body,
	})
}
