package experiments

import (
	"io"
	"os"

	"territory/communication"
	"territory/engine"
	"territory/player"
)

const (
	DefaultHumanToken = "human"
	DefaultAIToken    = "ai"
)

// AgentFactory creates the agent for a roster entry: the human token plays
// from the console, the AI token uses the built-in heuristic and anything
// else is run as an external process.
type AgentFactory struct {
	HumanToken    string
	AIToken       string
	In            io.Reader
	Out           io.Writer
	BridgeOptions []communication.Option

	human *player.Human
}

func NewAgentFactory(bridgeOptions ...communication.Option) *AgentFactory {
	return &AgentFactory{
		HumanToken:    DefaultHumanToken,
		AIToken:       DefaultAIToken,
		In:            os.Stdin,
		Out:           os.Stdout,
		BridgeOptions: bridgeOptions,
	}
}

func (f *AgentFactory) New(e Entry) engine.Agent {
	switch e.Command {
	case f.HumanToken:
		// all human seats share the console
		if f.human == nil {
			f.human = player.NewHuman(f.In, f.Out)
		}
		return f.human
	case f.AIToken:
		return player.NewHeuristic()
	default:
		return communication.NewBridge(e.Name, e.Command, f.BridgeOptions...)
	}
}
