package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Card is one enriched flashcard ready for export
type Card struct {
	Word       string // Lemma shown on the front
	Definition string
	Example    string
	AudioFile  string // Path to the pronunciation audio, optional
}

// Deck collects cards for export
type Deck struct {
	Name  string
	cards []Card
}

// NewDeck creates an empty deck
func NewDeck(name string) *Deck {
	return &Deck{Name: name}
}

// AddCard adds a card to the deck
func (d *Deck) AddCard(card Card) {
	d.cards = append(d.cards, card)
}

// Cards returns the cards in insertion order
func (d *Deck) Cards() []Card {
	return d.cards
}

// Stats returns the number of cards and how many have audio
func (d *Deck) Stats() (total, withAudio int) {
	total = len(d.cards)
	for _, card := range d.cards {
		if card.AudioFile != "" {
			withAudio++
		}
	}
	return
}

// WriteCSV writes a CSV file Anki can import with the media copied into
// its collection.media folder by hand
func (d *Deck) WriteCSV(path string, headers bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if headers {
		if err := writer.Write(defaultFields); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range d.cards {
		record := []string{card.Word, card.Definition, card.Example, audioField(card.AudioFile)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// audioField formats the audio reference for Anki
func audioField(audioFile string) string {
	if audioFile == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filepath.Base(audioFile))
}
