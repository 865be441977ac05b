package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response payload shapes differ per module; rendering flattens each into
// transcript-ready assistant text.

type chatResponse struct {
	Response string `json:"response"`
	HasFile  bool   `json:"hasFile"`
	FileName string `json:"fileName"`
	FileID   string `json:"fileId"`
}

type correction struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

type proofreadResponse struct {
	Corrections []correction `json:"corrections"`
	PDFURL      string       `json:"pdf_url"`
}

type translateResponse struct {
	TranslatedText string   `json:"translated_text"`
	Alternatives   []string `json:"alternatives"`
}

type fileResultResponse struct {
	DownloadURL     string `json:"download_url"`
	ViewURL         string `json:"view_url"`
	PresentationURL string `json:"presentation_url"`
}

func renderResponse(module string, body []byte) (string, error) {
	switch module {
	case "proofread":
		return renderProofread(body)
	case "translate":
		return renderTranslate(body)
	case "excel", "presentation":
		return renderFileResult(module, body)
	default:
		var r chatResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return "", fmt.Errorf("parse %s response: %w", moduleLabel(module), err)
		}
		if r.Response == "" {
			return "", fmt.Errorf("empty %s response", moduleLabel(module))
		}
		return r.Response, nil
	}
}

func renderProofread(body []byte) (string, error) {
	var r proofreadResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("parse proofread response: %w", err)
	}

	var b strings.Builder
	b.WriteString("I've proofread your text.")
	if len(r.Corrections) == 0 {
		b.WriteString(" No significant errors found. Great job!")
	} else {
		b.WriteString(" Here are my corrections:\n")
		for _, c := range r.Corrections {
			explanation := c.Explanation
			if explanation == "" {
				explanation = "Grammar or spelling correction"
			}
			fmt.Fprintf(&b, "- %q -> %q (%s)\n", c.Original, c.Corrected, explanation)
		}
	}
	if r.PDFURL != "" {
		fmt.Fprintf(&b, "Corrected PDF: %s", r.PDFURL)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func renderTranslate(body []byte) (string, error) {
	var r translateResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}
	if r.TranslatedText == "" {
		return "", fmt.Errorf("empty translate response")
	}

	var b strings.Builder
	b.WriteString(r.TranslatedText)
	if len(r.Alternatives) > 0 {
		b.WriteString("\nAlternatives: ")
		b.WriteString(strings.Join(r.Alternatives, "; "))
	}
	return b.String(), nil
}

func renderFileResult(module string, body []byte) (string, error) {
	var r fileResultResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("parse %s response: %w", module, err)
	}

	url := r.DownloadURL
	if url == "" {
		url = r.PresentationURL
	}
	if url == "" {
		return "", fmt.Errorf("%s response missing download url", module)
	}

	noun := "spreadsheet"
	if module == "presentation" {
		noun = "presentation"
	}
	out := fmt.Sprintf("Your %s is ready: %s", noun, url)
	if r.ViewURL != "" {
		out += fmt.Sprintf(" (view online: %s)", r.ViewURL)
	}
	return out, nil
}
