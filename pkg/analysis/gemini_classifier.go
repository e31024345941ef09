package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	ErrGeminiNotConfigured = errors.New("GEMINI_API_KEY not set")
	ErrGeminiEmptyResponse = errors.New("gemini returned no candidates")
)

const classificationPrompt = `Você é um classificador de amostras de feijão segundo a Instrução Normativa MAPA nº 12/2008.
Analise a foto da amostra usando os documentos de referência quando fornecidos e responda SOMENTE com JSON no formato do schema.
- species: espécie ou grupo comercial identificado (por exemplo "carioca", "preto", "cores").
- classification.summary.type: tipo 1, 2 ou 3 pela tolerância de defeitos, 0 para fora de tipo e -1 se a imagem NÃO for uma amostra de feijão.
- classification.summary.defect_percentage: percentual total estimado de defeitos.
- classification.summary.explanation: justificativa curta em português.
- classification.defects: percentuais de defeitos graves (mofado, queimado, germinado, carunchado) e leves (amassado, danificado, imaturo, partido).
- colorimetry: luminosidade média L*, desvio padrão, classificação dark|intermediate|light e nota final de 5 a 10.`

type (
	// Classifier turns a sample photo into a structured classification.
	Classifier interface {
		Classify(ctx context.Context, image []byte, mimeType string) (domain.ClassificationResult, error)
	}

	GeminiConfig struct {
		APIKey        string
		Model         string
		ReferenceURIs []string
		BaseURL       string
		Timeout       time.Duration
	}

	geminiClassifier struct {
		cfg        GeminiConfig
		httpClient *http.Client
	}
)

func LoadGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIKey:        utils.GetConfig("GEMINI_API_KEY"),
		Model:         utils.GetConfig("GEMINI_MODEL"),
		ReferenceURIs: utils.GetConfigList("GEMINI_REFERENCE_URIS"),
		BaseURL:       defaultGeminiBaseURL,
		Timeout:       60 * time.Second,
	}
}

func NewGeminiClassifier(cfg GeminiConfig) Classifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &geminiClassifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func defectSchema(fields ...string) map[string]interface{} {
	props := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		props[f] = map[string]interface{}{"type": "NUMBER"}
	}
	return map[string]interface{}{
		"type":       "OBJECT",
		"properties": props,
		"required":   fields,
	}
}

func responseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"species": map[string]interface{}{"type": "STRING"},
			"classification": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"summary": map[string]interface{}{
						"type": "OBJECT",
						"properties": map[string]interface{}{
							"type":              map[string]interface{}{"type": "INTEGER"},
							"defect_percentage": map[string]interface{}{"type": "NUMBER"},
							"explanation":       map[string]interface{}{"type": "STRING"},
						},
						"required": []string{"type", "defect_percentage", "explanation"},
					},
					"defects": map[string]interface{}{
						"type": "OBJECT",
						"properties": map[string]interface{}{
							"grave": defectSchema("moldy", "burned", "germinated", "insect_damaged"),
							"light": defectSchema("crushed", "damaged", "immature", "broken"),
						},
						"required": []string{"grave", "light"},
					},
				},
				"required": []string{"summary", "defects"},
			},
			"colorimetry": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"average_l": map[string]interface{}{"type": "NUMBER"},
					"std_dev":   map[string]interface{}{"type": "NUMBER"},
					"classification": map[string]interface{}{
						"type": "STRING",
						"enum": []string{"dark", "intermediate", "light"},
					},
					"final_score": map[string]interface{}{"type": "NUMBER"},
				},
				"required": []string{"average_l", "std_dev", "classification", "final_score"},
			},
		},
		"required": []string{"species", "classification", "colorimetry"},
	}
}

func (g *geminiClassifier) Classify(ctx context.Context, image []byte, mimeType string) (domain.ClassificationResult, error) {
	if g.cfg.APIKey == "" {
		return domain.ClassificationResult{}, ErrGeminiNotConfigured
	}

	parts := []map[string]interface{}{{"text": classificationPrompt}}
	for _, uri := range g.cfg.ReferenceURIs {
		parts = append(parts, map[string]interface{}{
			"file_data": map[string]interface{}{
				"mime_type": "application/pdf",
				"file_uri":  uri,
			},
		})
	}
	parts = append(parts, map[string]interface{}{
		"inline_data": map[string]interface{}{
			"mime_type": mimeType,
			"data":      base64.StdEncoding.EncodeToString(image),
		},
	})

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{{"parts": parts}},
		"generationConfig": map[string]interface{}{
			"temperature":      0.1,
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema(),
		},
	}
	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	geminiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, geminiURL, bytes.NewBuffer(requestJSON))
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.ClassificationResult{}, fmt.Errorf("gemini API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return domain.ClassificationResult{}, err
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return domain.ClassificationResult{}, ErrGeminiEmptyResponse
	}

	return parseClassification(geminiResp.Candidates[0].Content.Parts[0].Text)
}

// parseClassification accepts the JSON document with or without a markdown fence.
func parseClassification(text string) (domain.ClassificationResult, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("failed to parse classification: %w", err)
	}

	t := result.Classification.Summary.Type
	if t < domain.NotABeanType || t > 3 {
		return domain.ClassificationResult{}, fmt.Errorf("classification type %d out of range", t)
	}
	return result, nil
}
