package handlers

import (
	"net/http"

	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/rules"
)

func CreateTransactionRule(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req rules.RuleInput
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create transaction rule request body", "user_id", userID)
			return
		}
		rule, err := rulesService.Create(r.Context(), userID, req)
		if err != nil {
			respondError(w, r, err, "failed to create transaction rule", "user_id", userID)
			return
		}
		logging.FromContext(r.Context()).Info("transaction rule created", "user_id", userID, "rule_id", rule.ID)
		writeJSON(w, http.StatusCreated, rule)
	}
}

func GetAllTransactionRules(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		list, err := rulesService.List(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list transaction rules", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

func GetTransactionRuleByID(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			respondError(w, r, err, "invalid rule id param", "user_id", userID)
			return
		}
		rule, err := rulesService.Get(r.Context(), userID, ruleID)
		if err != nil {
			respondError(w, r, err, "failed to get transaction rule", "user_id", userID, "rule_id", ruleID)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func UpdateTransactionRule(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			respondError(w, r, err, "invalid rule id param", "user_id", userID)
			return
		}
		var req rules.RuleInput
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update transaction rule request body", "user_id", userID)
			return
		}
		rule, err := rulesService.Update(r.Context(), userID, ruleID, req)
		if err != nil {
			respondError(w, r, err, "failed to update transaction rule", "user_id", userID, "rule_id", ruleID)
			return
		}
		logging.FromContext(r.Context()).Info("transaction rule updated", "user_id", userID, "rule_id", ruleID)
		writeJSON(w, http.StatusOK, rule)
	}
}

func DeleteTransactionRule(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			respondError(w, r, err, "invalid rule id param", "user_id", userID)
			return
		}
		if err := rulesService.Delete(r.Context(), userID, ruleID); err != nil {
			respondError(w, r, err, "failed to delete transaction rule", "user_id", userID, "rule_id", ruleID)
			return
		}
		logging.FromContext(r.Context()).Info("transaction rule deleted", "user_id", userID, "rule_id", ruleID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// TriggerTransactionRules re-categorises the caller's transactions.
func TriggerTransactionRules(rulesService *rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		changed, err := rulesService.Trigger(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to apply transaction rules", "user_id", userID, "changed", changed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"updated": changed})
	}
}
