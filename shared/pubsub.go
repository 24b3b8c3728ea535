// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
package shared

import "context"

type PubSubChannel string

const (
	AnalysisCompleted PubSubChannel = "analysis.completed"
	AnalysisFailed    PubSubChannel = "analysis.failed"

	// AnalysisCancelRequested asks the instance running an analysis to cancel it
	AnalysisCancelRequested PubSubChannel = "analysis.cancel"
)

type PubSubMessage interface {
	GetChannel() PubSubChannel
	GetPayload() map[string]any
}

type PubSubBroker interface {
	Publish(ctx context.Context, message PubSubMessage) error
	Subscribe(topic PubSubChannel) (<-chan map[string]any, error)
}

type SimpleMessage struct {
	Channel PubSubChannel
	Payload map[string]any
}

func (m SimpleMessage) GetChannel() PubSubChannel {
	return m.Channel
}

func (m SimpleMessage) GetPayload() map[string]any {
	return m.Payload
}

// AnalysisEvent announces that an analysis reached a terminal status.
type AnalysisEvent struct {
	AnalysisID       string
	TenantID         string
	Status           string
	OverallRiskScore float64
	ErrorKind        string
}

// NewAnalysisEventMessage publishes on AnalysisFailed for failed analyses, on AnalysisCompleted otherwise.
func NewAnalysisEventMessage(event AnalysisEvent, failed bool) SimpleMessage {
	channel := AnalysisCompleted
	if failed {
		channel = AnalysisFailed
	}
	payload := map[string]any{
		"analysisId":       event.AnalysisID,
		"tenantId":         event.TenantID,
		"status":           event.Status,
		"overallRiskScore": event.OverallRiskScore,
	}
	if event.ErrorKind != "" {
		payload["errorKind"] = event.ErrorKind
	}
	return SimpleMessage{Channel: channel, Payload: payload}
}

func NewCancelRequestMessage(analysisID string) SimpleMessage {
	return SimpleMessage{
		Channel: AnalysisCancelRequested,
		Payload: map[string]any{"analysisId": analysisID},
	}
}

// AnalysisIDFromPayload returns the analysis id carried by an event or cancel request.
func AnalysisIDFromPayload(payload map[string]any) (string, bool) {
	id, ok := payload["analysisId"].(string)
	return id, ok && id != ""
}
