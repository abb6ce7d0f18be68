package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func doRequest(method, url string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if keyFlag != "" {
		req.Header.Set("Authorization", "Bearer "+keyFlag)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func doGet(url string) ([]byte, error) { return doRequest(http.MethodGet, url, nil) }

func doPostJSON(url string, payload interface{}) ([]byte, error) {
	return doRequest(http.MethodPost, url, payload)
}

func doPutJSON(url string, payload interface{}) ([]byte, error) {
	return doRequest(http.MethodPut, url, payload)
}

func doDelete(url string) ([]byte, error) { return doRequest(http.MethodDelete, url, nil) }
