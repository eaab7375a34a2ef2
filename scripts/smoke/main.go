// Command smoke exercises a running server end to end: log in, list batches,
// save one session's attendance and wait for the sheet sync to settle. It is
// a deploy check, not a test suite.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) call(method, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		if env.Error != nil {
			return fmt.Errorf("%s %s: %d %s: %s", method, path, resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func main() {
	base := flag.String("base", "http://localhost:8080/api/v1", "API base URL")
	username := flag.String("username", "admin", "login username")
	password := flag.String("password", "dance123", "login password")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 15 * time.Second}}

	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(http.MethodPost, "/auth/login", map[string]string{
		"username": *username,
		"password": *password,
	}, &login); err != nil {
		log.Fatalf("login: %v", err)
	}
	c.token = login.AccessToken
	log.Println("login ok")

	var batches []struct {
		ID         int    `json:"id"`
		Name       string `json:"name"`
		StudentIDs []int  `json:"studentIds"`
	}
	if err := c.call(http.MethodGet, "/batches", nil, &batches); err != nil {
		log.Fatalf("list batches: %v", err)
	}
	if len(batches) == 0 {
		log.Fatal("no batches visible")
	}
	log.Printf("batches ok (%d visible)", len(batches))

	batch := batches[0]
	var sessions struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	if err := c.call(http.MethodGet, fmt.Sprintf("/batches/%d/sessions", batch.ID), nil, &sessions); err != nil {
		log.Fatalf("list sessions: %v", err)
	}
	if len(sessions.Sessions) == 0 {
		log.Fatalf("batch %q has no sessions to save", batch.Name)
	}
	sessionID := sessions.Sessions[len(sessions.Sessions)-1].ID

	attendance := make([]map[string]interface{}, 0, len(batch.StudentIDs))
	for _, id := range batch.StudentIDs {
		attendance = append(attendance, map[string]interface{}{"studentId": id, "status": "Present"})
	}
	if err := c.call(http.MethodPut, "/sessions/"+sessionID+"/attendance", map[string]interface{}{
		"attendance": attendance,
	}, nil); err != nil {
		log.Fatalf("save attendance: %v", err)
	}
	log.Printf("save ok (session %s)", sessionID)

	deadline := time.Now().Add(30 * time.Second)
	for {
		var sync struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := c.call(http.MethodGet, "/sessions/"+sessionID+"/sync", nil, &sync); err != nil {
			log.Fatalf("sync state: %v", err)
		}
		switch sync.Status {
		case "saved":
			log.Printf("sync ok: %s", sync.Message)
			return
		case "error":
			log.Fatalf("sync failed: %s", sync.Message)
		}
		if time.Now().After(deadline) {
			log.Fatalf("sync did not settle, last status %q", sync.Status)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
