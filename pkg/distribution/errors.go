package distribution

// Machine-readable error codes returned to callers of the engine.
const (
	CodeBadPhaseID              = "BAD_PHASE_ID"
	CodeInvalidPhaseParams      = "INVALID_PHASE_PARAMS"
	CodePhaseNotMovable         = "PHASE_NOT_MOVABLE"
	CodeNoNeighbor              = "NO_NEIGHBOR"
	CodePhaseNotFound           = "PHASE_NOT_FOUND"
	CodePhaseNotOpenable        = "PHASE_NOT_OPENABLE"
	CodePhaseNotSnapshotted     = "PHASE_NOT_SNAPSHOTTED"
	CodePhaseNotCompleted       = "PHASE_NOT_COMPLETED"
	CodePhaseAlreadyFinalized   = "PHASE_ALREADY_FINALIZED"
	CodePhaseNotFinalized       = "PHASE_NOT_FINALIZED"
	CodeNoClaimSnapshots        = "NO_CLAIM_SNAPSHOTS"
	CodeFinalizeBlockedMismatch = "FINALIZE_BLOCKED_MISMATCH"

	CodeContributionNotFound      = "CONTRIBUTION_NOT_FOUND"
	CodeContributionNotSplittable = "CONTRIBUTION_NOT_SPLITTABLE"
	CodeContributionLocked        = "CONTRIBUTION_LOCKED"

	CodeSessionNotFound            = "SESSION_NOT_FOUND"
	CodeSessionWalletMismatch      = "SESSION_WALLET_MISMATCH"
	CodeSessionDestinationMismatch = "SESSION_DESTINATION_MISMATCH"
	CodeSessionNotOpen             = "SESSION_NOT_OPEN"
	CodeTxSignatureAlreadyUsed     = "TX_SIGNATURE_ALREADY_USED"
	CodeAmountExceedsClaimable     = "AMOUNT_EXCEEDS_PHASE_CLAIMABLE"
	CodeClaimInsertFailed          = "CLAIM_INSERT_FAILED"
	CodeInvalidAmount              = "INVALID_AMOUNT"
	CodeInvalidAddress             = "INVALID_ADDRESS"
	CodeInvalidTxSignature         = "INVALID_TX_SIGNATURE"

	CodeInternalError = "INTERNAL_ERROR"
)
