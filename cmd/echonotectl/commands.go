package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/echonote/echonote/internal/model"
)

func newClient(base string) *resty.Client {
	return resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
}

func runList(base string, limit int, out io.Writer) error {
	resp, err := newClient(base).R().
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/memory")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return apiError(resp.StatusCode(), resp.Body())
	}

	var body struct {
		Items []model.MemoryCard `json:"items"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	for _, card := range body.Items {
		fmt.Fprintf(out, "%s  %s  %q (%d action items, %d done)\n",
			card.ID, card.CreatedAt.Format(time.RFC3339), card.Title,
			len(card.ActionItems), len(card.CompletedActionItems))
	}
	return nil
}

func runGet(base, id string, out io.Writer) error {
	resp, err := newClient(base).R().Get("/memory/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return apiError(resp.StatusCode(), resp.Body())
	}
	return printCard(out, resp.Body())
}

func runToggle(base, id, index string, out io.Writer) error {
	idx, err := strconv.Atoi(index)
	if err != nil {
		return fmt.Errorf("index must be an integer: %q", index)
	}
	resp, err := newClient(base).R().
		SetBody(map[string]any{"action": "toggle_complete", "actionIndex": idx}).
		Patch("/memory/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return apiError(resp.StatusCode(), resp.Body())
	}
	return printCard(out, resp.Body())
}

func runDelete(base, id string, out io.Writer) error {
	resp, err := newClient(base).R().Delete("/memory/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return apiError(resp.StatusCode(), resp.Body())
	}
	fmt.Fprintf(out, "deleted %s\n", id)
	return nil
}

func printCard(out io.Writer, raw []byte) error {
	var card model.MemoryCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	fmt.Fprintf(out, "id:         %s\n", card.ID)
	fmt.Fprintf(out, "created_at: %s\n", card.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "title:      %s\n", card.Title)
	fmt.Fprintf(out, "mood:       %s\n", card.Mood)
	fmt.Fprintf(out, "category:   %v\n", card.Category)
	fmt.Fprintln(out, "transcript:", card.Transcript)
	done := make(map[int]bool, len(card.CompletedActionItems))
	for _, i := range card.CompletedActionItems {
		done[i] = true
	}
	for i, item := range card.ActionItems {
		mark := " "
		if done[i] {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i, item)
	}
	return nil
}

func apiError(status int, body []byte) error {
	var envlp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envlp); err == nil && envlp.Error != "" {
		if envlp.Detail != "" {
			return fmt.Errorf("%s: %s", envlp.Error, envlp.Detail)
		}
		return fmt.Errorf("%s", envlp.Error)
	}
	return fmt.Errorf("unexpected status %d", status)
}
