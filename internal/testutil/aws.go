package testutil

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// MockS3Client is an in-memory bucket.
// Objects is what reads see; uploads land in UploadedData.
type MockS3Client struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	UploadedData map[string][]byte
	GetErr       error
	PutErr       error
	ListErr      error
}

// NewMockS3Client creates an empty MockS3Client.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Objects:      make(map[string][]byte),
		UploadedData: make(map[string][]byte),
	}
}

// GetObject returns a stored object.
func (m *MockS3Client) GetObject(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if data, ok := m.Objects[key]; ok {
		return data, nil
	}
	return nil, &ObjectNotFoundError{Key: key}
}

// PutObject records an upload.
func (m *MockS3Client) PutObject(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	m.UploadedData[key] = data
	return nil
}

// ListObjects returns the keys under prefix in lexical order.
func (m *MockS3Client) ListObjects(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var keys []string
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ObjectNotFoundError is returned for a missing key.
type ObjectNotFoundError struct {
	Key string
}

func (e *ObjectNotFoundError) Error() string {
	return "object not found: " + e.Key
}

// MockBedrockClient returns a canned model response and records the last call.
type MockBedrockClient struct {
	mu          sync.Mutex
	Response    string
	Err         error
	LastPrompt  string
	LastModelID string
	Calls       int
}

// NewMockBedrockClient creates a new MockBedrockClient.
func NewMockBedrockClient() *MockBedrockClient {
	return &MockBedrockClient{}
}

// RespondWith sets Response to a Claude messages body whose only text block is text.
func (m *MockBedrockClient) RespondWith(text string) {
	body, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = string(body)
}

// InvokeModel returns the canned response.
func (m *MockBedrockClient) InvokeModel(modelID string, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastModelID = modelID
	m.LastPrompt = prompt

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
