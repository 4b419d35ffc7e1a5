package main

import (
	"softphone-console/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to the coordinator.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// State push channel for the browser console.
	r.GET("/ws", h.StreamState)

	v1 := r.Group("/v1")
	{
		v1.GET("/state", h.GetState)

		v1.GET("/calls", h.ListCalls)
		calls := v1.Group("/calls")
		{
			calls.POST("/start", h.StartCall)
			calls.POST("/end", h.EndCall)
			calls.POST("/answer", h.AnswerCall)
			calls.POST("/decline", h.DeclineCall)
		}

		dialer := v1.Group("/dialer")
		{
			dialer.POST("/digits", h.PressDigit)
			dialer.DELETE("/digits", h.Backspace)
			dialer.DELETE("", h.ClearDialer)
		}

		v1.GET("/voicemails", h.ListVoicemails)
		voicemails := v1.Group("/voicemails")
		{
			voicemails.POST("", h.SimulateVoicemail)
			voicemails.POST("/:id/read", h.MarkVoicemailRead)
			voicemails.DELETE("/:id", h.DeleteVoicemail)
		}

		v1.GET("/contacts", h.ListContacts)
		contacts := v1.Group("/contacts")
		{
			contacts.POST("", h.CreateContact)
			contacts.PATCH("/:id", h.UpdateContact)
			contacts.DELETE("/:id", h.DeleteContact)
		}
	}
}
