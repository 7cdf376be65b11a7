// Package fireable реализует канал отмены прогона.
//
// Агрегатор (или команда "flatware fire") рассылает Sentinel через
// широковещательный endpoint die. Каждый воркер подписан на die и ждёт
// работу через Fireable.AwaitNext, который мультиплексирует подписку с
// любым числом других источников:
//
//	f, err := fireable.New(ctx, transport, logger)
//	if err != nil {
//	    return err
//	}
//	err = f.UntilFired(ctx, []<-chan []byte{work}, func(body []byte) error {
//	    return run(body)
//	})
//
// Отмена кооперативная: воркер, занятый выполнением сценария, увидит
// Sentinel только при следующем ожидании.
package fireable
