package httpapi

import (
	"errors"
	"net/http"

	"softphone-console/internal/store"
	"softphone-console/internal/voip"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call the coordinator, return JSON.
type Handlers struct {
	Coordinator *store.Coordinator
}

// --- State ---

// GetState returns the full coordinator snapshot; the console renders
// entirely from this shape.
func (h Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coordinator.Snapshot())
}

func (h Handlers) ListCalls(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coordinator.Snapshot().CallHistory)
}

func (h Handlers) ListVoicemails(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coordinator.Snapshot().Voicemails)
}

func (h Handlers) ListContacts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coordinator.Snapshot().Contacts)
}

// --- Dialer ---

type digitRequest struct {
	Digit string `json:"digit"`
}

func (h Handlers) PressDigit(c *gin.Context) {
	var req digitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Digit == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "digit required"})
		return
	}
	h.Coordinator.AppendDigit(req.Digit)
	c.JSON(http.StatusOK, gin.H{"dialed_number": h.Coordinator.DialedNumber()})
}

func (h Handlers) Backspace(c *gin.Context) {
	h.Coordinator.Backspace()
	c.JSON(http.StatusOK, gin.H{"dialed_number": h.Coordinator.DialedNumber()})
}

func (h Handlers) ClearDialer(c *gin.Context) {
	h.Coordinator.ClearDialed()
	c.JSON(http.StatusOK, gin.H{"dialed_number": ""})
}

// --- Call session ---

type startCallRequest struct {
	Number string `json:"number"`
}

func (h Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Number == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number required"})
		return
	}
	call, err := h.Coordinator.StartCall(req.Number)
	if err != nil {
		if errors.Is(err, store.ErrCallInProgress) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call already in progress"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call failed"})
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h Handlers) EndCall(c *gin.Context) {
	h.Coordinator.EndCall()
	c.Status(http.StatusNoContent)
}

func (h Handlers) AnswerCall(c *gin.Context) {
	pending, ok := h.Coordinator.IncomingCall()
	if !ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no incoming call"})
		return
	}
	h.Coordinator.AnswerCall(pending)
	c.JSON(http.StatusOK, h.Coordinator.Snapshot())
}

func (h Handlers) DeclineCall(c *gin.Context) {
	pending, ok := h.Coordinator.IncomingCall()
	if !ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no incoming call"})
		return
	}
	h.Coordinator.DeclineCall(pending)
	c.JSON(http.StatusOK, h.Coordinator.Snapshot())
}

// --- Voicemail ---

type simulateVoicemailRequest struct {
	SenderNumber string `json:"sender_number"`
	SenderName   string `json:"sender_name,omitempty"`
}

// SimulateVoicemail generates a voicemail from the given sender, as the
// demo "leave me a voicemail" flow does.
func (h Handlers) SimulateVoicemail(c *gin.Context) {
	var req simulateVoicemailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SenderNumber == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "sender_number required"})
		return
	}
	vm := h.Coordinator.SimulateVoicemail(req.SenderNumber, req.SenderName)
	c.JSON(http.StatusCreated, vm)
}

// MarkVoicemailRead flips the read flag. Unknown ids succeed as no-ops; this
// mirrors the coordinator's silent not-found policy.
func (h Handlers) MarkVoicemailRead(c *gin.Context) {
	h.Coordinator.MarkVoicemailRead(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h Handlers) DeleteVoicemail(c *gin.Context) {
	h.Coordinator.DeleteVoicemail(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// --- Contacts ---

func (h Handlers) CreateContact(c *gin.Context) {
	var req voip.NewContact
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Name == "" || req.Number == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name and number required"})
		return
	}
	contact := h.Coordinator.AddContact(req)
	c.JSON(http.StatusCreated, contact)
}

func (h Handlers) UpdateContact(c *gin.Context) {
	var patch voip.ContactPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, ok := h.Coordinator.UpdateContact(c.Param("id"), patch)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeleteContact(c *gin.Context) {
	h.Coordinator.DeleteContact(c.Param("id"))
	c.Status(http.StatusNoContent)
}
