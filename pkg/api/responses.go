package api

type GenerateResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Text     string `json:"text"`
	// Demo is true when the text is a canned answer rather than a completion.
	Demo bool `json:"demo"`
}

type ProviderInfo struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Model    string `json:"model"`
	Demo     bool   `json:"demo"`
}

type ProviderList struct {
	Object string         `json:"object"`
	Data   []ProviderInfo `json:"data"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Time   string `json:"time"`
}
