package auth

import "fmt"

// ExtractGroups reads a flat group list from claims. A missing claim means no groups.
func ExtractGroups(claims map[string]any, claimField string) ([]string, error) {
	rawValue, ok := claims[claimField]
	if !ok || rawValue == nil {
		return []string{}, nil
	}

	switch groups := rawValue.(type) {
	case []string:
		return append([]string(nil), groups...), nil
	case []any:
		result := make([]string, 0, len(groups))
		for _, g := range groups {
			if str, ok := g.(string); ok {
				result = append(result, str)
			}
		}
		return result, nil
	case string:
		return []string{groups}, nil
	default:
		return nil, fmt.Errorf("groups claim %s has unsupported type %T", claimField, rawValue)
	}
}

// ExtractClaimString extracts a non-empty string claim.
func ExtractClaimString(claims map[string]any, claimField string) (string, error) {
	rawValue, ok := claims[claimField]
	if !ok {
		return "", fmt.Errorf("claim field %s not found", claimField)
	}

	value, ok := rawValue.(string)
	if !ok {
		return "", fmt.Errorf("claim field %s is not a string", claimField)
	}

	if value == "" {
		return "", fmt.Errorf("claim field %s is empty", claimField)
	}

	return value, nil
}

// ExtractOptionalString returns the claim when it is a string, otherwise "".
func ExtractOptionalString(claims map[string]any, claimField string) string {
	value, _ := claims[claimField].(string)
	return value
}
