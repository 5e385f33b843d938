package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"talos/internal/capture"
)

// maxReceiptBytes bounds uploaded receipt images.
const maxReceiptBytes = 10 << 20

// handleCapture runs the receipt scanner over an uploaded image. The proposed
// amount is only a suggestion: when the confidence clears the configured
// threshold the form is pre-filled, otherwise it is shown for manual
// confirmation. Nothing is persisted here.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		BadRequestError("Invalid upload").Write(w)
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		BadRequestError("Missing receipt image").Write(w)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt read error", "error", err, "filename", header.Filename)
		BadRequestError("Could not read the receipt image").Write(w)
		return
	}

	outcome, err := s.svc.CaptureReceipt(r.Context(), image)
	if errors.Is(err, capture.ErrUnreadable) {
		ErrorNotice(http.StatusUnprocessableEntity, CodeCapture, "Could not read an amount from the receipt").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt capture error", "error", err, "filename", header.Filename)
		ErrorNotice(http.StatusInternalServerError, CodeCapture, "Receipt processing failed").Write(w)
		return
	}

	amountStr := strconv.FormatFloat(outcome.Result.Amount.Euros(), 'f', 2, 64)
	data := struct {
		Amount     string
		Confidence int
		Applied    bool
	}{
		Amount:     amountStr,
		Confidence: outcome.Result.Confidence,
		Applied:    outcome.Applied,
	}

	b := NewHTMXResponse().
		Trigger("capture:result", map[string]interface{}{
			"amount":     amountStr,
			"confidence": outcome.Result.Confidence,
			"applied":    outcome.Applied,
		})
	if outcome.Applied {
		b.TriggerSuccessNotification("Amount read from receipt")
	} else {
		b.TriggerNotification(NotificationWarning, "Low confidence, please confirm the amount", 5000)
	}

	if s.templates == nil {
		b.BodyHTML(`<div class="capture-result">Proposed: €` + amountStr + `</div>`).Write(w)
		return
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "capture_result.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "capture_result.html")
		b.BodyHTML(`<div class="capture-result">Proposed: €` + amountStr + `</div>`).Write(w)
		return
	}
	b.BodyHTML(body.String()).Write(w)
}
