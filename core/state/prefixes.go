package state

const (
	claimWindowPrefix   = "claims/window/"
	claimLeafPrefix     = "claims/leaf/"
	claimBitsPrefix     = "claims/bits/"
	claimBitCountKey    = "claims/bits/count"
	claimSupplyKey      = "claims/supply"
	claimWalletKey      = "claims/wallet"
	programRootPrefix   = "program/root/"
	emberWordPrefix     = "ember/word/"
	emberLeafPrefix     = "ember/leaf/"
	emberWeightPrefix   = "ember/weight/"
	emberUserAshPrefix  = "ember/ash/user/"
	emberTotalAshPrefix = "ember/ash/total/"
	authorityHolderKey  = "authority/holder"
	authorityRenounced  = "authority/renounced"
	pausePrefix         = "pause/"
)
