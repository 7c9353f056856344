package netmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Tier
	}{
		{"disconnected", State{Connected: false, Reachable: false, Technology: TechWifi}, TierOffline},
		{"unreachable", State{Connected: true, Reachable: false, Technology: TechWifi}, TierOffline},
		{"wifi", State{Connected: true, Reachable: true, Technology: TechWifi}, TierExcellent},
		{"ethernet", State{Connected: true, Reachable: true, Technology: TechEthernet}, TierExcellent},
		{"5g", State{Connected: true, Reachable: true, Technology: TechCell5G}, TierGood},
		{"4g", State{Connected: true, Reachable: true, Technology: TechCell4G}, TierGood},
		{"3g", State{Connected: true, Reachable: true, Technology: TechCell3G}, TierPoor},
		{"2g", State{Connected: true, Reachable: true, Technology: TechCell2G}, TierPoor},
		{"unknown cellular", State{Connected: true, Reachable: true, Technology: TechCellular}, TierPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.state))
		})
	}
}

func TestManualMonitor_SubscribeAndDedup(t *testing.T) {
	m := NewManual(State{})

	var got []State
	unsubscribe := m.Subscribe(func(s State) {
		got = append(got, s)
	})

	online := State{Connected: true, Reachable: true, Technology: TechWifi}
	m.Set(online)
	m.Set(online) // no change, no notification
	assert.Len(t, got, 1)
	assert.Equal(t, online, m.Current())

	unsubscribe()
	m.Set(State{})
	assert.Len(t, got, 1, "unsubscribed listener should not fire")
}
