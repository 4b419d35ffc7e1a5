package voip

import "time"

// Seed data loaded at service construction. Treated as configuration: the
// console always starts with a populated history so every tab has content.

func seedCallHistory() []Call {
	return []Call{
		{ID: "ch1", Direction: CallOutgoing, Number: "555-123-4567", Name: "Alice", Timestamp: time.Date(2025, 7, 30, 10, 0, 0, 0, time.UTC), DurationSeconds: intPtr(120)},
		{ID: "ch2", Direction: CallIncoming, Number: "555-987-6543", Name: "Bob", Timestamp: time.Date(2025, 7, 29, 15, 30, 0, 0, time.UTC), DurationSeconds: intPtr(65)},
		{ID: "ch3", Direction: CallMissed, Number: "555-111-2222", Timestamp: time.Date(2025, 7, 28, 9, 15, 0, 0, time.UTC)},
		{ID: "ch4", Direction: CallOutgoing, Number: "555-333-4444", Name: "Charlie", Timestamp: time.Date(2025, 7, 27, 18, 45, 0, 0, time.UTC), DurationSeconds: intPtr(300)},
		{ID: "ch5", Direction: CallIncoming, Number: "555-555-5555", Name: "Dave", Timestamp: time.Date(2025, 7, 26, 11, 20, 0, 0, time.UTC), DurationSeconds: intPtr(90)},
	}
}

func seedVoicemails() []Voicemail {
	return []Voicemail{
		{
			ID:              "vm1",
			SenderNumber:    "555-123-4567",
			SenderName:      "Alice",
			Timestamp:       time.Date(2025, 7, 31, 8, 0, 0, 0, time.UTC),
			DurationSeconds: 35,
			Transcription:   "Hola, soy Alice. Solo quería saber si recibiste mi correo. Llámame de vuelta cuando puedas.",
			IsRead:          false,
		},
		{
			ID:              "vm2",
			SenderNumber:    "555-999-0000",
			SenderName:      "Soporte Técnico",
			Timestamp:       time.Date(2025, 7, 29, 14, 10, 0, 0, time.UTC),
			DurationSeconds: 60,
			Transcription:   "Este es un mensaje de soporte técnico. Su ticket ha sido actualizado. Visite nuestro portal para más detalles.",
			IsRead:          true,
		},
	}
}

func seedContacts() []Contact {
	return []Contact{
		{ID: "c1", Name: "Alice Smith", Number: "555-123-4567", Labels: []string{"cliente"}},
		{ID: "c2", Name: "Bob Johnson", Number: "555-987-6543", Labels: []string{"proveedor"}},
		{ID: "c3", Name: "Charlie Brown", Number: "555-333-4444", Labels: []string{"interno"}},
		{ID: "c4", Name: "Dave Davis", Number: "555-555-5555", Labels: []string{"cliente"}},
		{ID: "c5", Name: "Eve Adams", Number: "555-777-8888", Labels: []string{"interno"}},
	}
}

func intPtr(n int) *int { return &n }
