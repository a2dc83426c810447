package service

import (
	"strings"

	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/pkg/utils"
)

// Classify partitions the provider's raw records into native, preset and
// hidden sets for one chain.
//
// Rules, applied per record in order:
//  1. A record is native if its native-token flag is set, its address equals
//     the native sentinel, or it carries no contract address at all.
//  2. Spam-flagged records are dropped unless preset or native; the registry's
//     explicit trust always wins over the provider's spam flag.
//  3. Zero-balance records are dropped unless preset; preset tokens always
//     render, even at zero, so the UI can offer them for deposit.
func Classify(records []entity.RawBalanceRecord, chainCfg entity.ChainConfig) entity.ClassifiedRecords {
	presetSet := make(map[string]struct{}, len(chainCfg.PresetTokens))
	for _, t := range chainCfg.PresetTokens {
		presetSet[t.Address] = struct{}{}
	}

	var out entity.ClassifiedRecords
	for i := range records {
		rec := records[i]

		if isNativeRecord(rec) {
			if out.Native == nil {
				out.Native = &records[i]
			}
			continue
		}

		addr := strings.ToLower(derefAddress(rec.TokenAddress))
		_, isPreset := presetSet[addr]

		if rec.PossibleSpam && !isPreset {
			continue
		}

		balance := utils.ParseRecordBalance(rec.BalanceFormatted, rec.Balance, rec.Decimals)
		if balance <= 0 && !isPreset {
			continue
		}

		if isPreset {
			out.Preset = append(out.Preset, rec)
		} else {
			out.Hidden = append(out.Hidden, rec)
		}
	}
	return out
}

func isNativeRecord(rec entity.RawBalanceRecord) bool {
	if rec.NativeToken {
		return true
	}
	if rec.TokenAddress == nil || *rec.TokenAddress == "" {
		return true
	}
	return strings.EqualFold(*rec.TokenAddress, entity.NativeSentinelAddress)
}

func derefAddress(addr *string) string {
	if addr == nil {
		return ""
	}
	return *addr
}
