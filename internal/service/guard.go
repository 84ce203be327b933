package service

import "tangerine/internal/models"

// AssertOwner rejects mutations by anyone other than the resource owner.
func AssertOwner(ownerID, callerID uint) error {
	if ownerID != callerID {
		return models.NewForbiddenError("You can only modify your own content")
	}
	return nil
}

// AssertPathConsistency rejects requests whose body id contradicts the URL id.
// A zero bodyID means the body carried no id, which is fine.
func AssertPathConsistency(pathID, bodyID uint) error {
	if bodyID != 0 && bodyID != pathID {
		return models.NewValidationError("Body id does not match URL id")
	}
	return nil
}
