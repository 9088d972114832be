// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// Publisher is the part of an MQTT client the producer needs.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

func connectMQTT(broker, clientID string, logger *log.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, token.Error())
	}
	logger.Info("connected to MQTT broker", "broker", broker, "client_id", clientID)
	return client, nil
}

// mqttPublisher publishes retained QoS 0 messages so late subscribers get
// the latest report straight away.
type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}

// subscribeReports hands every report published on topic to fn.
// Payloads that are not reports are logged and dropped.
func subscribeReports(client mqtt.Client, topic string, logger *log.Logger, fn func(track.Report)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		r, err := decodeReport(msg.Payload())
		if err != nil {
			logger.Warn("report unmarshal error", "topic", msg.Topic(), "err", err)
			return
		}
		fn(r)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	logger.Info("subscribed", "topic", topic)
	return nil
}

func decodeReport(payload []byte) (track.Report, error) {
	var r track.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return track.Report{}, err
	}
	return r, nil
}
