package ai

import "fmt"

// Agent selects the system prompt a completion runs under.
type Agent int

const (
	AgentMain Agent = iota
	AgentInfo
	AgentVoice
)

var agentNames = map[string]Agent{
	"main":  AgentMain,
	"info":  AgentInfo,
	"voice": AgentVoice,
}

var systemPrompts = map[Agent]string{
	AgentMain:  "You are a helpful assistant.",
	AgentInfo:  "You are an expert researcher who answers with accurate info.",
	AgentVoice: "You are a helpful assistant. Keep your responses concise and clear.",
}

// ParseAgent resolves a request-supplied agent name; empty means main.
func ParseAgent(name string) (Agent, error) {
	if name == "" {
		return AgentMain, nil
	}
	a, ok := agentNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown agent %q", name)
	}
	return a, nil
}

func (a Agent) String() string {
	for name, v := range agentNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("agent(%d)", int(a))
}

func (a Agent) SystemPrompt() string {
	return systemPrompts[a]
}
