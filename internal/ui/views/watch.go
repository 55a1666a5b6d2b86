package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
)

// changedMsg reports that the cached state of a watched query changed
type changedMsg struct {
	key cache.QueryKey
}

// waitFor blocks until sub signals, then reports the change. It returns
// nil once the subscription is closed, ending the chain.
func waitFor(sub *cache.Subscription) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-sub.C(); !ok {
			return nil
		}
		return changedMsg{key: sub.Key()}
	}
}

// shouldReload decides whether a change notification warrants a read. A
// query whose latest response failed is left alone so a persistent error
// does not turn into a request loop; the user refreshes explicitly.
func shouldReload(c *client.Client, key cache.QueryKey) bool {
	res, ok := c.State(key)
	return !ok || res.Err == nil
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
