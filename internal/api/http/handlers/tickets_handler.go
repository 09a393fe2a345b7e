package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Zachary2562/recordables-ticketquest/internal/api/dto"
	"github.com/Zachary2562/recordables-ticketquest/internal/auth"
	"github.com/Zachary2562/recordables-ticketquest/internal/service"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// TicketsHandler manages the ticket listing, view, and mutation endpoints.
type TicketsHandler struct {
	queries     *service.TicketQueryService
	replies     *service.ReplyService
	commands    *service.TicketCommandService
	exports     *service.ExportService
	attachments *service.AttachmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(
	queries *service.TicketQueryService,
	replies *service.ReplyService,
	commands *service.TicketCommandService,
	exports *service.ExportService,
	attachments *service.AttachmentService,
) *TicketsHandler {
	return &TicketsHandler{
		queries:     queries,
		replies:     replies,
		commands:    commands,
		exports:     exports,
		attachments: attachments,
	}
}

func requestFilter(c *fiber.Ctx) (service.TicketFilter, error) {
	raw := service.RawTicketFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Category:   c.Query("category"),
		Content:    c.Query("content"),
		UserID:     c.Query("user_id"),
		AssignedID: c.Query("assigned_id"),
		CreatedID:  c.Query("created_id"),
		Sort:       c.Query("sort"),
	}
	return service.NormalizeTicketFilter(raw)
}

func (h *TicketsHandler) list(c *fiber.Ctx, myView, subscribed bool) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter, err := requestFilter(c)
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}

	result, err := h.queries.ListTickets(c.UserContext(), principal.Actor(), service.TicketListRequest{
		Filter:     filter,
		Page:       page,
		MyView:     myView,
		Subscribed: subscribed,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(result)})
}

// ListTickets GET /flicket/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	return h.list(c, false, false)
}

// ListMyTickets GET /flicket/tickets/my.
func (h *TicketsHandler) ListMyTickets(c *fiber.Ctx) error {
	return h.list(c, true, false)
}

// ListSubscribedTickets GET /flicket/tickets/subscribed.
func (h *TicketsHandler) ListSubscribedTickets(c *fiber.Ctx) error {
	return h.list(c, false, true)
}

// GetTicket GET /flicket/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ticket, err := h.queries.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// ListReplies GET /flicket/tickets/:id/replies.
func (h *TicketsHandler) ListReplies(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	result, err := h.queries.ListReplies(c.UserContext(), id, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReplyListResponse(result)})
}

// CreateTicket POST /flicket/tickets. Accepts JSON or multipart with files.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	var attachments []storage.NamedStream
	if form, err := c.MultipartForm(); err == nil {
		req.Title = formValue(form, "title")
		req.Content = formValue(form, "content")
		if req.CategoryID, err = formInt(form, "category_id"); err != nil {
			return err
		}
		if req.PriorityID, err = formInt(form, "priority_id"); err != nil {
			return err
		}
		if req.Hours, err = formFloat(form, "hours"); err != nil {
			return err
		}
		if attachments, err = formFiles(form); err != nil {
			return err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.commands.CreateTicket(c.UserContext(), principal.Actor(), service.CreateTicketInput{
		Title:       req.Title,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		PriorityID:  req.PriorityID,
		Hours:       req.Hours,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":         ticket.ID,
		"display_id": ticket.ZFill(),
		"title":      ticket.Title,
	}})
}

// Reply POST /flicket/tickets/:id/replies. Accepts JSON or multipart.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req dto.ReplyRequest
	var attachments []storage.NamedStream
	if form, err := c.MultipartForm(); err == nil {
		req.Content = formValue(form, "content")
		if req.StatusID, err = formOptionalInt(form, "status_id"); err != nil {
			return err
		}
		if req.PriorityID, err = formOptionalInt(form, "priority_id"); err != nil {
			return err
		}
		if req.Hours, err = formFloat(form, "hours"); err != nil {
			return err
		}
		if attachments, err = formFiles(form); err != nil {
			return err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	post, err := h.replies.SubmitReply(c.UserContext(), principal.Actor(), id, service.ReplyInput{
		Content:     req.Content,
		Hours:       req.Hours,
		StatusID:    req.StatusID,
		PriorityID:  req.PriorityID,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewReplyResponse(post)})
}

// Subscribe POST /flicket/tickets/:id/subscription.
func (h *TicketsHandler) Subscribe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.replies.Subscribe(c.UserContext(), principal.Actor(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Unsubscribe DELETE /flicket/tickets/:id/subscription.
func (h *TicketsHandler) Unsubscribe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.replies.Unsubscribe(c.UserContext(), principal.Actor(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign PUT /flicket/tickets/:id/assignment.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.commands.AssignTicket(c.UserContext(), principal.Actor(), id, req.AssignedID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteTicket DELETE /flicket/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.commands.DeleteTicket(c.UserContext(), principal.Actor(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ExportCSV GET /flicket/tickets/export/csv.
func (h *TicketsHandler) ExportCSV(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter, err := requestFilter(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.exports.WriteCSV(c.UserContext(), principal.Actor(), filter, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.csv"`)
	return c.Send(buf.Bytes())
}

// ExportPDF GET /flicket/tickets/export/pdf.
func (h *TicketsHandler) ExportPDF(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter, err := requestFilter(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.exports.WritePDF(c.UserContext(), principal.Actor(), filter, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.pdf"`)
	return c.Send(buf.Bytes())
}

// DownloadAttachment GET /flicket/uploads/:key.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return util.NewValidationError("missing attachment key", nil)
	}
	file, upload, err := h.attachments.OpenAttachment(c.UserContext(), key)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", upload.FileName))
	return c.SendStream(file)
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, util.NewValidationError("invalid identifier", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, util.NewValidationError(fmt.Sprintf("%s must be an integer", name), map[string]any{name: raw})
	}
	return val, nil
}

func formValue(form *multipart.Form, name string) string {
	if vals := form.Value[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func formInt(form *multipart.Form, name string) (int64, error) {
	raw := formValue(form, name)
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, util.NewValidationError(fmt.Sprintf("%s must be an integer", name), map[string]any{name: raw})
	}
	return val, nil
}

func formFloat(form *multipart.Form, name string) (float64, error) {
	raw := formValue(form, name)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, util.NewValidationError(fmt.Sprintf("%s must be a number", name), map[string]any{name: raw})
	}
	return val, nil
}

func formOptionalInt(form *multipart.Form, name string) (*int64, error) {
	raw := formValue(form, name)
	if raw == "" {
		return nil, nil
	}
	val, err := formInt(form, name)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

func formFiles(form *multipart.Form) ([]storage.NamedStream, error) {
	var streams []storage.NamedStream
	for _, headers := range form.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				return nil, util.NewValidationError("unreadable attachment", map[string]any{"file": header.Filename})
			}
			streams = append(streams, storage.NamedStream{FileName: header.Filename, Reader: file})
		}
	}
	return streams, nil
}
