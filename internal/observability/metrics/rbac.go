// Copyright 2026 The Rolegate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RBACMetrics holds the counters the authorization path records.
type RBACMetrics struct {
	decisions     metric.Int64Counter
	roleMutations metric.Int64Counter
}

// NewRBACMetrics registers the RBAC instruments on a meter.
func NewRBACMetrics(m *Meter) (*RBACMetrics, error) {
	decisions, err := m.CreateCounter("rbac_decisions_total", "Authorization decisions, labeled by outcome")
	if err != nil {
		return nil, err
	}
	mutations, err := m.CreateCounter("rbac_role_mutations_total", "Role and assignment writes, labeled by operation")
	if err != nil {
		return nil, err
	}
	return &RBACMetrics{decisions: decisions, roleMutations: mutations}, nil
}

// RecordDecision counts one authorization decision.
func (r *RBACMetrics) RecordDecision(ctx context.Context, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	r.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRoleMutation counts one role or assignment write.
func (r *RBACMetrics) RecordRoleMutation(ctx context.Context, op string) {
	r.roleMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}
