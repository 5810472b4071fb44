package scorer

import (
	"context"
	"testing"
)

func TestLexicalSpamSignals(t *testing.T) {
	l := NewLexical()

	tests := []struct {
		name        string
		text        string
		minSpam     float64
		maxSpam     float64
		promotional bool
	}{
		{
			name:        "aggressive promo",
			text:        "Special discount! Visit now! Limited offer!",
			minSpam:     0.9,
			maxSpam:     0.95,
			promotional: true,
		},
		{
			name:        "promo with url and contact",
			text:        "Best deal at www.cheapfood.example shop, whatsapp me at 987-654-3210",
			minSpam:     0.8,
			maxSpam:     0.95,
			promotional: true,
		},
		{
			name:    "plain question",
			text:    "My dog has been scratching his ears a lot lately, what could be the reason?",
			maxSpam: 0.1,
		},
		{
			name:    "single promo word in context",
			text:    "The vet gave us a discount on the second visit which was nice",
			minSpam: 0.25,
			maxSpam: 0.35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := l.Score(context.Background(), "forum_post", tt.text)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if res.Spam < tt.minSpam || res.Spam > tt.maxSpam {
				t.Errorf("Spam = %.3f, want in [%.2f, %.2f]", res.Spam, tt.minSpam, tt.maxSpam)
			}
			if res.Flags.Promotional != tt.promotional {
				t.Errorf("Promotional = %v, want %v", res.Flags.Promotional, tt.promotional)
			}
		})
	}
}

func TestLexicalToxicity(t *testing.T) {
	l := NewLexical()

	res, err := l.Score(context.Background(), "comment", "You are an idiot and a scammer, shut up")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Toxicity < 0.8 {
		t.Errorf("Toxicity = %.3f, want >= 0.8 for multiple toxic terms", res.Toxicity)
	}

	res, err = l.Score(context.Background(), "comment", "Thanks for the helpful advice about grooming")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Toxicity != 0 {
		t.Errorf("Toxicity = %.3f, want 0 for benign text", res.Toxicity)
	}
}

func TestLexicalBilingualAdjustment(t *testing.T) {
	l := NewLexical()

	res, err := l.Score(context.Background(), "comment", "Mera kutta bahut cute hai yaar")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if !res.Flags.Bilingual {
		t.Fatal("Bilingual = false, want true for Hinglish text")
	}
	if res.CulturalAdjustment != 0.75 {
		t.Errorf("CulturalAdjustment = %.2f, want 0.75", res.CulturalAdjustment)
	}

	// One Hindi word is not enough to mark the text bilingual.
	res, err = l.Score(context.Background(), "comment", "My dog is such a good yaar to everyone")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Flags.Bilingual {
		t.Error("Bilingual = true for a single Hindi word, want false")
	}
	if res.CulturalAdjustment != 1.0 {
		t.Errorf("CulturalAdjustment = %.2f, want 1.0", res.CulturalAdjustment)
	}
}

func TestLexicalProfessionalFlag(t *testing.T) {
	l := NewLexical()

	res, err := l.Score(context.Background(), "answer", "For deworming, follow the dosage your veterinarian prescribed")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if !res.Flags.Professional {
		t.Error("Professional = false, want true for veterinary vocabulary")
	}
}

func TestLexicalQuality(t *testing.T) {
	l := NewLexical()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "   ", 0},
		{"short", "ok nice", 0.5},
		{
			"long detailed answer",
			"Ear infections in dogs usually start with persistent scratching and head shaking. " +
				"Check for redness, swelling or an unusual smell inside the ear canal. " +
				"Clean gently with a vet approved solution and avoid cotton swabs. " +
				"If symptoms persist for more than two days, schedule a clinic visit.",
			0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := l.Score(context.Background(), "answer", tt.text)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if res.Quality != tt.want {
				t.Errorf("Quality = %.2f, want %.2f", res.Quality, tt.want)
			}
		})
	}
}
