package handler

import "log"

// NewDebugHandler builds the stock "debug" node, generalizing
// original_source/Firmware/Priotlib/DebugHandler.c's debugHelper: a
// transparent pass-through that logs the registration, mode, and request
// batch both before and after calling the rest of the chain. Net-SNMP
// gates this behind a "-D helper:debug" token; here it always logs via the
// standard logger, same as the chain's other stock nodes.
func NewDebugHandler() *Node {
	return NewNode("debug", debugAccess)
}

func debugAccess(node *Node, reg *RegistrationInfo, info *RequestInfo, requests []*Request) error {
	logDebugEntry(reg, info, requests)

	// Drive the rest of the chain ourselves so we can log the outcome,
	// then suppress Invoke's automatic advance for this call.
	err := InvokeFrom(node.Next(), reg, info, requests)
	node.Flags |= FlagAutoNextOverrideOnce

	logDebugExit(err, requests)
	return err
}

func logDebugEntry(reg *RegistrationInfo, info *RequestInfo, requests []*Request) {
	log.Printf("helper:debug: entering %q context:%q root:%s priority:%d mode:%s",
		reg.Name, reg.Context, reg.Root, reg.Priority, info.Mode)
	debugPrintRequests(requests)
}

func logDebugExit(err error, requests []*Request) {
	log.Printf("helper:debug: returned err:%v", err)
	debugPrintRequests(requests)
	log.Printf("helper:debug: exiting")
}

func debugPrintRequests(requests []*Request) {
	for _, r := range requests {
		flags := ""
		if r.Processed {
			flags += " [processed]"
		}
		if r.Delegated {
			flags += " [delegated]"
		}
		if r.Status != 0 {
			flags += " [status]"
		}
		log.Printf("helper:debug:   #%d: %s%s", r.Index, r.Variable.Name, flags)
	}
}
